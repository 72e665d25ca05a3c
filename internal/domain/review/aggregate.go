package review

import (
	"bytes"
	"slices"

	"github.com/shopspring/decimal"
)

// Summary is the recomputed rating of one reviewee for one review type.
type Summary struct {
	Average    decimal.Decimal
	Categories map[string]decimal.Decimal
	// Count is the number of visible reviews, independent of the averaging window.
	Count int
}

// Aggregate averages the most recent window visible reviews (window <= 0 means all of them).
// Results depend only on the set of reviews, never on their order.
func Aggregate(reviews []*Review, window int) Summary {
	visible := make([]*Review, 0, len(reviews))
	for _, r := range reviews {
		if !r.IsHidden() {
			visible = append(visible, r)
		}
	}

	summary := Summary{Average: decimal.Zero, Categories: map[string]decimal.Decimal{}, Count: len(visible)}
	if len(visible) == 0 {
		return summary
	}

	slices.SortFunc(visible, newestFirst)
	if window > 0 && len(visible) > window {
		visible = visible[:window]
	}

	var total int64
	catTotals := map[string]int64{}
	catCounts := map[string]int64{}
	for _, r := range visible {
		total += int64(r.Overall().Value())
		for k, v := range r.categories {
			catTotals[k] += int64(v)
			catCounts[k]++
		}
	}

	summary.Average = mean(total, int64(len(visible)))
	for k, sum := range catTotals {
		summary.Categories[k] = mean(sum, catCounts[k])
	}
	return summary
}

type Distribution struct {
	Total   int
	Average decimal.Decimal
	// Counts[i] is the number of visible reviews rated i+1.
	Counts [5]int
}

func Distribute(reviews []*Review) Distribution {
	var d Distribution
	var total int64
	for _, r := range reviews {
		if r.IsHidden() {
			continue
		}
		v := r.Overall().Value()
		d.Counts[v-1]++
		d.Total++
		total += int64(v)
	}
	d.Average = mean(total, int64(d.Total))
	return d
}

func mean(sum, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(n)).Round(1)
}

func newestFirst(a, b *Review) int {
	if c := b.createdAt.Compare(a.createdAt); c != 0 {
		return c
	}
	return bytes.Compare(b.id[:], a.id[:])
}
