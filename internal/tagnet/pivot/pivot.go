package pivot

import (
	"sort"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
)

// Pivot turns long (tag, yearMonth, count) rows into one record per month
// with a count per tag seen in that month. Tags missing from a month are
// left out; callers that need dense series fill the gaps themselves.
// Records come back sorted by yearMonth regardless of input order.
func Pivot(rows []domain.TagMonthCount) []domain.MonthlyRecord {
	order := make([]string, 0)
	byMonth := make(map[string]*domain.MonthlyRecord)

	for _, row := range rows {
		rec, ok := byMonth[row.YearMonth]
		if !ok {
			rec = domain.NewMonthlyRecord(row.YearMonth)
			byMonth[row.YearMonth] = rec
			order = append(order, row.YearMonth)
		}
		rec.Set(row.Tag, row.Count)
	}

	out := make([]domain.MonthlyRecord, 0, len(order))
	for _, ym := range order {
		out = append(out, *byMonth[ym])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].YearMonth < out[j].YearMonth
	})
	return out
}

// Tags lists every tag that appears in at least one record, in first-seen
// order across the sorted records.
func Tags(records []domain.MonthlyRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		for _, t := range r.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
