package budget

import (
	"sort"

	"budgetd/internal/core"
)

// Resolver answers "which limit is effective for this category in this
// period" over an effective-dated version history. It never returns a
// version dated later than the query period; with no matching version the
// caller falls back to the category's default limit.
//
// The history is indexed once at construction, newest first per category,
// so each lookup is a short ordered scan instead of a pass over the full
// history.
type Resolver struct {
	byCategory map[int64][]core.LimitVersion
}

// NewResolver builds a resolver over a version history snapshot.
func NewResolver(versions []core.LimitVersion) *Resolver {
	byCategory := make(map[int64][]core.LimitVersion)
	for _, v := range versions {
		byCategory[v.CategoryID] = append(byCategory[v.CategoryID], v)
	}
	for id := range byCategory {
		vs := byCategory[id]
		sort.Slice(vs, func(i, j int) bool {
			a := core.Period{Year: vs[i].Year, Month: vs[i].Month}
			b := core.Period{Year: vs[j].Year, Month: vs[j].Month}
			return b.Before(a)
		})
	}
	return &Resolver{byCategory: byCategory}
}

// Effective returns the limit of the newest version whose period is at or
// before the query period. ok is false when no such version exists.
func (r *Resolver) Effective(categoryID int64, period core.Period) (limit float64, ok bool) {
	for _, v := range r.byCategory[categoryID] {
		at := core.Period{Year: v.Year, Month: v.Month}
		if !at.After(period) {
			return v.Limit, true
		}
	}
	return 0, false
}

// EffectiveAll resolves every indexed category for the period. Categories
// with no version at or before the period are absent from the result.
func (r *Resolver) EffectiveAll(period core.Period) map[int64]float64 {
	limits := make(map[int64]float64, len(r.byCategory))
	for id := range r.byCategory {
		if limit, ok := r.Effective(id, period); ok {
			limits[id] = limit
		}
	}
	return limits
}
