package review

import (
	"strings"
	"unicode/utf8"
)

const (
	MinCommentLength  = 20
	MaxCommentLength  = 1000
	MaxCategories     = 10
	MaxCategoryKeyLen = 50
)

type Rating struct {
	value int
}

func NewRating(v int) (Rating, error) {
	if v < 1 || v > 5 {
		return Rating{}, ErrInvalidRating
	}
	return Rating{value: v}, nil
}

func (r Rating) Value() int { return r.value }

type Comment struct {
	text string
}

func NewComment(s string) (Comment, error) {
	t := strings.TrimSpace(s)
	n := utf8.RuneCountInString(t)
	if n < MinCommentLength {
		return Comment{}, ErrCommentTooShort
	}
	if n > MaxCommentLength {
		return Comment{}, ErrCommentTooLong
	}
	return Comment{text: t}, nil
}

func (c Comment) String() string { return c.text }

// CategoryRatings is a sparse mapping; reviewers rate only the categories they care about.
type CategoryRatings map[string]int

func NewCategoryRatings(in map[string]int) (CategoryRatings, error) {
	if len(in) > MaxCategories {
		return nil, ErrTooManyCategories
	}
	out := make(CategoryRatings, len(in))
	for k, v := range in {
		key := strings.TrimSpace(k)
		if key == "" || len(key) > MaxCategoryKeyLen {
			return nil, ErrInvalidCategory
		}
		if v < 1 || v > 5 {
			return nil, ErrInvalidRating
		}
		out[key] = v
	}
	return out, nil
}
