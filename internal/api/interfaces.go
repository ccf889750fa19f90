package api

import (
	"context"
	"time"

	"github.com/envsense/envsense/internal/airquality"
	"github.com/envsense/envsense/internal/incident"
	"github.com/envsense/envsense/internal/ledger"
)

// ReportService defines the air-quality pipeline needed by handlers.
type ReportService interface {
	Report(ctx context.Context, place string) (*airquality.Report, error)
}

// LedgerStore defines the score-ledger operations needed by handlers.
type LedgerStore interface {
	SubmitScore(ctx context.Context, entry *ledger.ScoreEntry) error
	CorrectName(ctx context.Context, email, newName string) (int64, error)
	History(ctx context.Context, email string) ([]ledger.HistoryPoint, error)
	DaysActive(ctx context.Context, email string) (int, error)
	Leaderboard(ctx context.Context, year int, month time.Month) ([]ledger.LeaderboardRow, error)
}

// IncidentStore defines the incident-report operations needed by handlers.
type IncidentStore interface {
	CreateIncident(ctx context.Context, rep *incident.Report) error
	ListIncidents(ctx context.Context) ([]incident.Report, error)
}
