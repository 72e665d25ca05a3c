//go:build unit

package review_test

import (
	"strings"
	"testing"
	"time"

	"facility-booking/internal/domain/review"
	"facility-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.ReviewBuilder)
	errIs  error
}

func TestReview(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewReviewBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.False(t, actual.CreatedAt().IsZero())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
		assert.Equal(t, 5, actual.Overall().Value())
		assert.Equal(t, builder.DefaultReviewComment, actual.Comment().String())
		assert.Equal(t, review.CategoryRatings{"cleanliness": 5, "equipment": 4}, actual.Categories())
		assert.False(t, actual.IsHidden())
	})

	t.Run("rating validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "below minimum rating", mutate: func(b *builder.ReviewBuilder) { b.WithOverall(0) }, errIs: review.ErrInvalidRating},
			{name: "minimum valid rating", mutate: func(b *builder.ReviewBuilder) { b.WithOverall(1) }},
			{name: "maximum valid rating", mutate: func(b *builder.ReviewBuilder) { b.WithOverall(5) }},
			{name: "above maximum rating", mutate: func(b *builder.ReviewBuilder) { b.WithOverall(6) }, errIs: review.ErrInvalidRating},
		})
	})

	t.Run("category validation", func(t *testing.T) {
		tooMany := map[string]int{}
		for i := range review.MaxCategories + 1 {
			tooMany[strings.Repeat("c", i+1)] = 3
		}
		runCases(t, []testCase{
			{name: "no categories", mutate: func(b *builder.ReviewBuilder) { b.WithCategories(nil) }},
			{name: "category rated zero", mutate: func(b *builder.ReviewBuilder) { b.WithCategories(map[string]int{"lighting": 0}) }, errIs: review.ErrInvalidRating},
			{name: "blank category name", mutate: func(b *builder.ReviewBuilder) { b.WithCategories(map[string]int{"  ": 4}) }, errIs: review.ErrInvalidCategory},
			{name: "too many categories", mutate: func(b *builder.ReviewBuilder) { b.WithCategories(tooMany) }, errIs: review.ErrTooManyCategories},
		})
	})

	t.Run("comment validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "too short", mutate: func(b *builder.ReviewBuilder) { b.WithComment("Nice.") }, errIs: review.ErrCommentTooShort},
			{name: "short once trimmed", mutate: func(b *builder.ReviewBuilder) { b.WithComment("   nice place!   ") }, errIs: review.ErrCommentTooShort},
			{name: "exactly minimum", mutate: func(b *builder.ReviewBuilder) { b.WithComment(strings.Repeat("a", review.MinCommentLength)) }},
			{name: "exactly maximum", mutate: func(b *builder.ReviewBuilder) { b.WithComment(strings.Repeat("a", review.MaxCommentLength)) }},
			{name: "too long", mutate: func(b *builder.ReviewBuilder) { b.WithComment(strings.Repeat("a", review.MaxCommentLength+1)) }, errIs: review.ErrCommentTooLong},
			{name: "multibyte counts runes", mutate: func(b *builder.ReviewBuilder) { b.WithComment(strings.Repeat("é", review.MinCommentLength)) }},
		})
	})

	t.Run("type is checked before content", func(t *testing.T) {
		_, err := builder.NewReviewBuilder().
			WithType("coach_to_coach").
			WithOverall(0).
			WithComment("").
			BuildDomain()
		assert.ErrorIs(t, err, review.ErrInvalidReviewType)
	})
}

func TestReviewModeration(t *testing.T) {
	r := builder.NewReviewBuilder().BuildStored()
	later := time.Now().Add(time.Hour)

	assert.True(t, r.SetHidden(true, later))
	assert.True(t, r.IsHidden())
	assert.Equal(t, later, r.UpdatedAt())
	assert.False(t, r.SetHidden(true, later.Add(time.Hour)), "hiding twice changes nothing")
	assert.Equal(t, later, r.UpdatedAt())

	assert.ErrorIs(t, r.Report("  ", later), review.ErrInvalidReportReason)
	require.NoError(t, r.Report("spam", later))
	assert.True(t, r.IsReported())
}

func TestReviewCategoriesAreCopied(t *testing.T) {
	r := builder.NewReviewBuilder().BuildStored()
	c := r.Categories()
	c["cleanliness"] = 1
	assert.Equal(t, 5, r.Categories()["cleanliness"])
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewReviewBuilder()
			tc.mutate(b)
			actual, err := b.BuildDomain()
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, actual)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, actual)
		})
	}
}
