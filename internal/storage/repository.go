package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/envsense/envsense/internal/incident"
	"github.com/envsense/envsense/internal/ledger"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository, so
// tests can inject a fake.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for score entries and incident
// reports.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// SubmitScore appends one score entry. The unique index on
// (email, submitted_on) is the serialization point: two racing submissions
// for the same key cannot both insert, and the loser gets
// ledger.ErrDuplicateSubmission rather than a second record.
func (r *Repository) SubmitScore(ctx context.Context, entry *ledger.ScoreEntry) error {
	const q = `
		INSERT INTO score_entries (name, email, submitted_on, score, actions)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email, submitted_on) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, q, entry.Name, entry.Email, entry.Date, entry.Score, entry.Actions).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.ErrDuplicateSubmission
		}
		return fmt.Errorf("inserting score entry for %s: %w", entry.Email, err)
	}

	return nil
}

// HasSubmittedOn reports whether an entry exists for the (email, date) key.
func (r *Repository) HasSubmittedOn(ctx context.Context, email string, date time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM score_entries WHERE email = $1 AND submitted_on = $2
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, q, email, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking submission for %s: %w", email, err)
	}
	return exists, nil
}

// CorrectName rewrites the display name on every entry for the email, not
// just today's. Returns the number of rows updated. The single UPDATE is
// atomic with respect to concurrent submits.
func (r *Repository) CorrectName(ctx context.Context, email, newName string) (int64, error) {
	const q = `UPDATE score_entries SET name = $2 WHERE email = $1`

	tag, err := r.q.Exec(ctx, q, email, newName)
	if err != nil {
		return 0, fmt.Errorf("updating name for %s: %w", email, err)
	}
	return tag.RowsAffected(), nil
}

// History returns all of an email's (date, score) pairs, oldest first.
func (r *Repository) History(ctx context.Context, email string) ([]ledger.HistoryPoint, error) {
	const q = `
		SELECT submitted_on, score
		FROM score_entries
		WHERE email = $1
		ORDER BY submitted_on ASC
	`

	rows, err := r.q.Query(ctx, q, email)
	if err != nil {
		return nil, fmt.Errorf("querying history for %s: %w", email, err)
	}
	defer rows.Close()

	var points []ledger.HistoryPoint
	for rows.Next() {
		var p ledger.HistoryPoint
		if err := rows.Scan(&p.Date, &p.Score); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return points, nil
}

// DaysActive counts the distinct days an email has submitted on. This is
// the "streak" shown to users: a cumulative days-active count, not a
// consecutive-day run.
func (r *Repository) DaysActive(ctx context.Context, email string) (int, error) {
	const q = `SELECT COUNT(DISTINCT submitted_on) FROM score_entries WHERE email = $1`

	var n int
	if err := r.q.QueryRow(ctx, q, email).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting active days for %s: %w", email, err)
	}
	return n, nil
}

// Leaderboard aggregates the given calendar month: entries grouped by
// display name, scores summed, top ten by descending total. Ties break by
// earliest cumulative submission so the earlier contributor ranks first.
func (r *Repository) Leaderboard(ctx context.Context, year int, month time.Month) ([]ledger.LeaderboardRow, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	const q = `
		SELECT name, SUM(score) AS total
		FROM score_entries
		WHERE submitted_on >= $1 AND submitted_on < $2
		GROUP BY name
		ORDER BY total DESC, MIN(created_at) ASC
		LIMIT 10
	`

	rows, err := r.q.Query(ctx, q, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard for %d-%02d: %w", year, month, err)
	}
	defer rows.Close()

	var board []ledger.LeaderboardRow
	for rows.Next() {
		var row ledger.LeaderboardRow
		if err := rows.Scan(&row.Name, &row.TotalScore); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		row.Badge = ledger.BadgeFor(row.TotalScore)
		board = append(board, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leaderboard rows: %w", err)
	}

	return board, nil
}

// CreateIncident stores one pollution-incident report.
func (r *Repository) CreateIncident(ctx context.Context, rep *incident.Report) error {
	const q = `
		INSERT INTO incident_reports (id, reporter, location, region, category, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, q, rep.ID, rep.Reporter, rep.Location, rep.Region, rep.Category, rep.Description).
		Scan(&rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting incident report: %w", err)
	}
	return nil
}

// ListIncidents returns all incident reports, newest first.
func (r *Repository) ListIncidents(ctx context.Context) ([]incident.Report, error) {
	const q = `
		SELECT id, reporter, location, region, category, description, created_at
		FROM incident_reports
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying incident reports: %w", err)
	}
	defer rows.Close()

	var reports []incident.Report
	for rows.Next() {
		var rep incident.Report
		if err := rows.Scan(&rep.ID, &rep.Reporter, &rep.Location, &rep.Region, &rep.Category, &rep.Description, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning incident row: %w", err)
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating incident rows: %w", err)
	}

	return reports, nil
}
