// Package postgres loads the assessment catalog from a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/assessment"
	"github.com/kailas-cloud/assessrec/internal/repository/catalog"
)

// Querier is the subset of pgxpool.Pool the loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Loader reads the catalog table ordered by its id column.
type Loader struct {
	db    Querier
	table string
}

// New creates a loader over table.
func New(db Querier, table string) *Loader {
	return &Loader{db: db, table: table}
}

// NewPool connects to dsn and pings the server.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (l *Loader) query() string {
	ident := pgx.Identifier(strings.Split(l.table, ".")).Sanitize()
	return "SELECT title, description, duration, test_type, url, remote_support, adaptive_support FROM " +
		ident + " ORDER BY id"
}

// Load reads every row. The first invalid row aborts the load.
func (l *Loader) Load(ctx context.Context) ([]assessment.Record, error) {
	rows, err := l.db.Query(ctx, l.query())
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var records []assessment.Record
	line := 0
	for rows.Next() {
		line++

		var (
			title, url, remote, adaptive string
			description, testType        *string
			duration                     *int64
		)
		if err := rows.Scan(&title, &description, &duration, &testType, &url, &remote, &adaptive); err != nil {
			return nil, domain.NewCorpusError(line, "", "scan: "+err.Error())
		}

		row := catalog.Row{
			Title:       title,
			Description: deref(description),
			TestType:    deref(testType),
			URL:         url,
			Remote:      remote,
			Adaptive:    adaptive,
		}
		if duration != nil {
			row.Duration = strconv.FormatInt(*duration, 10)
		}

		rec, err := row.ToRecord(len(records), line)
		if err != nil {
			return nil, err //nolint:wrapcheck // CorpusError already carries location
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}

	if len(records) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	return records, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
