package infra

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor is what the Postgres stores need from a connection.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// ErrSQLMarker is returned for queries whose first line is not "--sql <uuid>".
var ErrSQLMarker = errors.New("sql marker missing or invalid")

var markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// SQLRunner executes marker-tagged store queries on the pool. Every call is
// logged under its marker id through the request logger found in ctx, so a
// slow library or session query can be traced back to the HTTP request.
type SQLRunner struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger.With().Str("component", "sql").Logger()}
}

// loggerFor prefers the request-scoped logger stored in ctx.
func (r *SQLRunner) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		scoped := l.With().Str("component", "sql").Logger()
		return &scoped
	}
	return &r.Logger
}

func (r *SQLRunner) prepare(ctx context.Context, op, query string) (string, string, *zerolog.Logger, error) {
	log := r.loggerFor(ctx)
	marker, body, err := extractMarker(query)
	if err != nil {
		log.Error().Err(err).Str("op", op).Msg("sql rejected")
		return "", "", log, err
	}
	return marker, body, log, nil
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, body, log, err := r.prepare(ctx, "exec", query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.Pool.Exec(ctx, body, args...)
	if err != nil {
		log.Error().Err(err).Str("sql", marker).Str("op", "exec").Msg("sql failed")
		return tag, err
	}
	log.Debug().
		Str("sql", marker).
		Str("op", "exec").
		Int64("rows", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("sql done")
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, body, log, err := r.prepare(ctx, "query_row", query)
	if err != nil {
		return errorRow{err: err}
	}
	return loggingRow{row: r.Pool.QueryRow(ctx, body, args...), logger: log, marker: marker, start: time.Now()}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, body, log, err := r.prepare(ctx, "query", query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.Pool.Query(ctx, body, args...)
	if err != nil {
		log.Error().Err(err).Str("sql", marker).Str("op", "query").Msg("sql failed")
		return nil, err
	}
	return loggingRows{Rows: rows, logger: log, marker: marker, start: start}, nil
}

// loggingRow reports the outcome when the store scans. A missing row is a
// normal lookup result and is logged at debug.
type loggingRow struct {
	row    pgx.Row
	logger *zerolog.Logger
	marker string
	start  time.Time
}

func (l loggingRow) Scan(dest ...any) error {
	err := l.row.Scan(dest...)
	event := l.logger.Debug()
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		event = l.logger.Error().Err(err)
	}
	event.
		Str("sql", l.marker).
		Str("op", "query_row").
		Bool("found", err == nil).
		Dur("duration", time.Since(l.start)).
		Msg("sql done")
	return err
}

type loggingRows struct {
	pgx.Rows
	logger *zerolog.Logger
	marker string
	start  time.Time
}

func (l loggingRows) Close() {
	l.Rows.Close()
	event := l.logger.Debug()
	if err := l.Rows.Err(); err != nil {
		event = l.logger.Error().Err(err)
	}
	event.
		Str("sql", l.marker).
		Str("op", "query").
		Dur("duration", time.Since(l.start)).
		Msg("sql done")
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(dest ...any) error {
	return e.err
}

// extractMarker splits a "--sql <uuid>" header line from the statement body.
func extractMarker(query string) (string, string, error) {
	header, body, _ := strings.Cut(strings.TrimSpace(query), "\n")
	header = strings.TrimSpace(header)
	if !markerRegexp.MatchString(header) {
		if header == "" {
			return "", "", fmt.Errorf("%w: empty query", ErrSQLMarker)
		}
		return "", "", fmt.Errorf("%w: %q", ErrSQLMarker, header)
	}
	return strings.TrimPrefix(header, "--sql "), strings.TrimSpace(body), nil
}

var _ SQLExecutor = (*SQLRunner)(nil)
