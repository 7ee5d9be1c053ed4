package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/lib/pq"
)

// Store is the aggregate query service. Implementations return rows as
// the backing engine produced them; validation happens downstream.
type Store interface {
	TopTags(ctx context.Context, limit int) ([]domain.TotalRow, error)
	TopTagsBetween(ctx context.Context, w domain.Window, limit int) ([]domain.TotalRow, error)
	Cooccurrence(ctx context.Context, w domain.Window, limit int) ([]domain.CooccurrenceRow, error)
	Monthly(ctx context.Context, tags []string) ([]domain.MonthlyRow, error)
}

const (
	topTagsQuery = `
		SELECT t.name AS tag, COUNT(*) AS count
		FROM item_tags t
		GROUP BY t.name
		ORDER BY count DESC, tag
		LIMIT $1
	`

	topTagsBetweenQuery = `
		SELECT t.name AS tag, COUNT(*) AS count
		FROM items i
		JOIN item_tags t ON t.item_id = i.id
		WHERE i.created_at BETWEEN $1 AND $2
		GROUP BY t.name
		ORDER BY count DESC, tag
		LIMIT $3
	`

	// a.name < b.name yields each unordered pair exactly once
	cooccurrenceQuery = `
		SELECT a.name AS tag1, b.name AS tag2, COUNT(*) AS count
		FROM items i
		JOIN item_tags a ON a.item_id = i.id
		JOIN item_tags b ON b.item_id = i.id AND a.name < b.name
		WHERE i.created_at BETWEEN $1 AND $2
		  AND a.name IS NOT NULL
		  AND b.name IS NOT NULL
		GROUP BY a.name, b.name
		ORDER BY count DESC, tag1, tag2
		LIMIT $3
	`

	monthlyQuery = `
		SELECT t.name AS tag,
		       to_char(date_trunc('month', i.created_at AT TIME ZONE $2), 'YYYY-MM-DD') AS year_month,
		       COUNT(*) AS count
		FROM items i
		JOIN item_tags t ON t.item_id = i.id
		WHERE t.name = ANY($1)
		GROUP BY tag, year_month
		ORDER BY year_month, tag
	`
)

// PostgresStore runs the aggregate queries against the items/item_tags
// tables.
type PostgresStore struct {
	db       *sql.DB
	timezone string
}

// NewPostgresStore creates a store. Monthly buckets are computed in the
// given IANA time zone.
func NewPostgresStore(db *sql.DB, timezone string) *PostgresStore {
	if timezone == "" {
		timezone = "UTC"
	}
	return &PostgresStore{db: db, timezone: timezone}
}

func (s *PostgresStore) TopTags(ctx context.Context, limit int) ([]domain.TotalRow, error) {
	return s.totals(ctx, topTagsQuery, limit)
}

func (s *PostgresStore) TopTagsBetween(ctx context.Context, w domain.Window, limit int) ([]domain.TotalRow, error) {
	return s.totals(ctx, topTagsBetweenQuery, w.Start, w.End, limit)
}

func (s *PostgresStore) totals(ctx context.Context, query string, args ...interface{}) ([]domain.TotalRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag totals: %w", err)
	}
	defer rows.Close()

	out := []domain.TotalRow{}
	for rows.Next() {
		var tag sql.NullString
		var count sql.NullInt64
		if err := rows.Scan(&tag, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tag total: %w", err)
		}
		out = append(out, domain.TotalRow{Tag: nullString(tag), Count: nullCount(count)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag totals: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Cooccurrence(ctx context.Context, w domain.Window, limit int) ([]domain.CooccurrenceRow, error) {
	rows, err := s.db.QueryContext(ctx, cooccurrenceQuery, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query co-occurrence: %w", err)
	}
	defer rows.Close()

	out := []domain.CooccurrenceRow{}
	for rows.Next() {
		var tag1, tag2 sql.NullString
		var count sql.NullInt64
		if err := rows.Scan(&tag1, &tag2, &count); err != nil {
			return nil, fmt.Errorf("failed to scan co-occurrence row: %w", err)
		}
		out = append(out, domain.CooccurrenceRow{
			Tag1:  nullString(tag1),
			Tag2:  nullString(tag2),
			Count: nullCount(count),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating co-occurrence rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Monthly(ctx context.Context, tags []string) ([]domain.MonthlyRow, error) {
	out := []domain.MonthlyRow{}
	if len(tags) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, monthlyQuery, pq.Array(tags), s.timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag, ym sql.NullString
		var count sql.NullInt64
		if err := rows.Scan(&tag, &ym, &count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly row: %w", err)
		}
		out = append(out, domain.MonthlyRow{
			Tag:       nullString(tag),
			YearMonth: nullString(ym),
			Count:     nullCount(count),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly rows: %w", err)
	}
	return out, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullCount(v sql.NullInt64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Int64
}
