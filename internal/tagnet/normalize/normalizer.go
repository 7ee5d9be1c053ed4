package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
)

// Options controls how the normalizer reacts to bad batches.
type Options struct {
	// Strict makes a non-empty batch in which every row is malformed an
	// error instead of an empty result.
	Strict bool
}

// Report summarises one normalization pass.
type Report struct {
	Total   int
	Kept    int
	Dropped []*domain.MalformedRowError
}

// Normalizer validates raw query rows. Rows with missing keys or bad counts
// are dropped and reported; valid rows pass through unchanged.
type Normalizer struct {
	opts Options
	log  *logger.Logger
}

func New(log *logger.Logger, opts Options) *Normalizer {
	return &Normalizer{opts: opts, log: logger.OrNop(log)}
}

// Cooccurrence validates co-occurrence rows.
func (n *Normalizer) Cooccurrence(rows []domain.CooccurrenceRow) ([]domain.TagPair, Report, error) {
	out := make([]domain.TagPair, 0, len(rows))
	rep := Report{Total: len(rows)}

	for i, row := range rows {
		pair, err := cooccurrenceRow(i, row)
		if err != nil {
			rep.Dropped = append(rep.Dropped, err)
			continue
		}
		out = append(out, pair)
	}

	rep.Kept = len(out)
	return out, rep, n.finish("cooccurrence", rep)
}

func cooccurrenceRow(i int, row domain.CooccurrenceRow) (domain.TagPair, *domain.MalformedRowError) {
	tag1, err := requireTag(i, "tag1", row.Tag1)
	if err != nil {
		return domain.TagPair{}, err
	}
	tag2, err := requireTag(i, "tag2", row.Tag2)
	if err != nil {
		return domain.TagPair{}, err
	}
	if tag1 == tag2 {
		return domain.TagPair{}, &domain.MalformedRowError{Row: i, Field: "tag2", Reason: "self pair"}
	}
	count, err := parseCount(i, row.Count)
	if err != nil {
		return domain.TagPair{}, err
	}
	return domain.TagPair{Tag1: tag1, Tag2: tag2, Count: count}, nil
}

// Monthly validates per-tag-month rows.
func (n *Normalizer) Monthly(rows []domain.MonthlyRow) ([]domain.TagMonthCount, Report, error) {
	out := make([]domain.TagMonthCount, 0, len(rows))
	rep := Report{Total: len(rows)}

	for i, row := range rows {
		mc, err := monthlyRow(i, row)
		if err != nil {
			rep.Dropped = append(rep.Dropped, err)
			continue
		}
		out = append(out, mc)
	}

	rep.Kept = len(out)
	return out, rep, n.finish("monthly", rep)
}

func monthlyRow(i int, row domain.MonthlyRow) (domain.TagMonthCount, *domain.MalformedRowError) {
	tag, err := requireTag(i, "tag", row.Tag)
	if err != nil {
		return domain.TagMonthCount{}, err
	}
	if tag == domain.YearMonthKey {
		return domain.TagMonthCount{}, &domain.MalformedRowError{Row: i, Field: "tag", Reason: "reserved tag name"}
	}
	ym, err := requireTag(i, "yearMonth", row.YearMonth)
	if err != nil {
		return domain.TagMonthCount{}, err
	}
	count, err := parseCount(i, row.Count)
	if err != nil {
		return domain.TagMonthCount{}, err
	}
	return domain.TagMonthCount{Tag: tag, YearMonth: ym, Count: count}, nil
}

// Totals validates per-tag total rows.
func (n *Normalizer) Totals(rows []domain.TotalRow) ([]domain.TagCount, Report, error) {
	out := make([]domain.TagCount, 0, len(rows))
	rep := Report{Total: len(rows)}

	for i, row := range rows {
		tag, err := requireTag(i, "tag", row.Tag)
		if err != nil {
			rep.Dropped = append(rep.Dropped, err)
			continue
		}
		count, err := parseCount(i, row.Count)
		if err != nil {
			rep.Dropped = append(rep.Dropped, err)
			continue
		}
		out = append(out, domain.TagCount{Tag: tag, Count: count})
	}

	rep.Kept = len(out)
	return out, rep, n.finish("totals", rep)
}

func (n *Normalizer) finish(kind string, rep Report) error {
	for _, d := range rep.Dropped {
		n.log.Warn("dropped malformed row", "kind", kind, "row", d.Row, "field", d.Field, "reason", d.Reason)
	}
	if n.opts.Strict && rep.Total > 0 && rep.Kept == 0 {
		return fmt.Errorf("%s: %w: %w", kind, domain.ErrAllRowsMalformed, rep.Dropped[0])
	}
	return nil
}

func requireTag(row int, field string, v *string) (string, *domain.MalformedRowError) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", &domain.MalformedRowError{Row: row, Field: field, Reason: "missing"}
	}
	return *v, nil
}

// parseCount coerces a raw count into a non-negative integer. Fractional,
// negative and non-numeric values are rejected rather than clamped.
func parseCount(row int, v interface{}) (int64, *domain.MalformedRowError) {
	bad := func(reason string) *domain.MalformedRowError {
		return &domain.MalformedRowError{Row: row, Field: "count", Reason: reason}
	}

	var n int64
	switch c := v.(type) {
	case nil:
		return 0, bad("missing")
	case int:
		n = int64(c)
	case int32:
		n = int64(c)
	case int64:
		n = c
	case uint32:
		n = int64(c)
	case uint64:
		if c > math.MaxInt64 {
			return 0, bad("out of range")
		}
		n = int64(c)
	case float64:
		i, reason := integral(c)
		if reason != "" {
			return 0, bad(reason)
		}
		n = i
	case json.Number:
		if i, err := c.Int64(); err == nil {
			n = i
			break
		}
		f, err := c.Float64()
		if err != nil {
			return 0, bad("not a number")
		}
		i, reason := integral(f)
		if reason != "" {
			return 0, bad(reason)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64)
		if err != nil {
			return 0, bad("not a number")
		}
		n = i
	default:
		return 0, bad(fmt.Sprintf("unsupported type %T", v))
	}

	if n < 0 {
		return 0, bad("negative")
	}
	return n, nil
}

func integral(f float64) (int64, string) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, "not a number"
	}
	if f != math.Trunc(f) {
		return 0, "not an integer"
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, "out of range"
	}
	return int64(f), ""
}
