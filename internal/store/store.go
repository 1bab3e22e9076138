package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/voidmaw/hotdaily/pkg/source"
)

// Pick is one recorded section winner.
type Pick struct {
	ID       int64     `db:"id" json:"id"`
	Section  string    `db:"section" json:"section"`
	Source   string    `db:"source" json:"source"`
	Title    string    `db:"title" json:"title"`
	URL      string    `db:"url" json:"url"`
	Stars    *int      `db:"stars" json:"stars,omitempty"`
	Views    *int      `db:"views" json:"views,omitempty"`
	Score    int       `db:"score" json:"score"`
	Reason   string    `db:"reason" json:"reason"`
	PickedAt time.Time `db:"picked_at" json:"picked_at"`
}

// ListOpts controls pick history listing.
type ListOpts struct {
	Section string
	Source  string
	Since   time.Time
	Limit   int
}

// Store is the pick-history persistence interface.
type Store interface {
	RecordPicks(ctx context.Context, reason string, picks []Pick) error
	ListPicks(ctx context.Context, opts ListOpts) ([]Pick, error)
	CountBySource(ctx context.Context) (map[string]int, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PickFromItem converts a ranked item into a history row.
func PickFromItem(section, reason string, item source.HotItem) Pick {
	return Pick{
		Section:  section,
		Source:   item.Source,
		Title:    item.Title,
		URL:      item.URL,
		Stars:    item.Stars,
		Views:    item.Views,
		Score:    item.Score(),
		Reason:   reason,
		PickedAt: time.Now().UTC(),
	}
}

func (s *SQLiteStore) RecordPicks(ctx context.Context, reason string, picks []Pick) error {
	for i := range picks {
		p := &picks[i]
		if p.Reason == "" {
			p.Reason = reason
		}
		if p.PickedAt.IsZero() {
			p.PickedAt = time.Now().UTC()
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO picks (section, source, title, url, stars, views, score, reason, picked_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.Section, p.Source, p.Title, p.URL, p.Stars, p.Views, p.Score, p.Reason, p.PickedAt)
		if err != nil {
			return fmt.Errorf("record pick %s/%s: %w", p.Section, p.Source, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListPicks(ctx context.Context, opts ListOpts) ([]Pick, error) {
	query := "SELECT * FROM picks WHERE 1=1"
	var args []any

	if opts.Section != "" {
		query += " AND section = ?"
		args = append(args, opts.Section)
	}
	if opts.Source != "" {
		query += " AND source = ?"
		args = append(args, opts.Source)
	}
	if !opts.Since.IsZero() {
		query += " AND picked_at >= ?"
		args = append(args, opts.Since)
	}

	query += " ORDER BY picked_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var picks []Pick
	if err := s.db.SelectContext(ctx, &picks, query, args...); err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	return picks, nil
}

func (s *SQLiteStore) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT source, COUNT(*) as cnt FROM picks GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("count picks by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var src string
		var cnt int
		if err := rows.Scan(&src, &cnt); err != nil {
			return nil, err
		}
		counts[src] = cnt
	}
	return counts, rows.Err()
}
