package board

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/garageboard/internal/models"
)

//go:generate moq -out source_mock.go . Source

// Source отдает авторитетное состояние доски
type Source interface {
	GetBoard(ctx context.Context) ([]models.Appointment, error)
	GetStats(ctx context.Context) (*models.BoardStats, error)
}

// Loader fetches the board and its stats and feeds the results into a Store.
type Loader struct {
	source Source
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

// NewLoader creates a loader bound to store.
func NewLoader(source Source, store *Store, logger *slog.Logger) *Loader {
	return &Loader{
		source: source,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Load fetches board and stats concurrently. Each half dispatches its own
// start/success/error actions, so a stats failure never hides the cards.
func (l *Loader) Load(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		l.store.Dispatch(FetchBoardStarted())
		cards, err := l.source.GetBoard(ctx)
		if err != nil {
			l.logger.Error("Failed to fetch board", "error", err)
			l.store.Dispatch(FetchBoardFailed(err))
			return fmt.Errorf("fetch board: %w", err)
		}
		l.store.Dispatch(FetchBoardSucceeded(cards, l.now()))
		l.logger.Debug("Board fetched", "cards", len(cards))
		return nil
	})

	g.Go(func() error {
		l.store.Dispatch(FetchStatsStarted())
		stats, err := l.source.GetStats(ctx)
		if err != nil {
			l.logger.Warn("Failed to fetch board stats", "error", err)
			l.store.Dispatch(FetchStatsFailed(err))
			return fmt.Errorf("fetch stats: %w", err)
		}
		l.store.Dispatch(FetchStatsSucceeded(stats))
		return nil
	})

	return g.Wait()
}

// Refresh is Load wrapped in the refreshing flag, for background reloads
// triggered while the board is already on screen.
func (l *Loader) Refresh(ctx context.Context) error {
	l.store.Dispatch(RefreshingSet(true))
	defer l.store.Dispatch(RefreshingSet(false))
	return l.Load(ctx)
}
