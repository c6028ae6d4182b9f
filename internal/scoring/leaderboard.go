package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Sink receives a copy of every submitted record, e.g. a remote scoreboard.
type Sink interface {
	Send(ctx context.Context, r Record) error
}

// Leaderboard is the scoring collaborator: it keeps finished games in
// local storage and forwards them to an optional sink.
type Leaderboard struct {
	storage ScoreStorage
	sink    Sink
	logger  *slog.Logger

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewLeaderboard creates a leaderboard. sink and logger may be nil.
func NewLeaderboard(storage ScoreStorage, sink Sink, logger *slog.Logger) *Leaderboard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Leaderboard{
		storage: storage,
		sink:    sink,
		logger:  logger.With("component", "leaderboard"),
	}
}

// Submit stores the record locally and forwards it to the sink in the
// background. Sink failures are logged and never returned.
func (l *Leaderboard) Submit(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	records, err := l.storage.LoadAll()
	if err == nil {
		err = l.storage.SaveAll(append(records, r))
	}
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("could not save record: %w", err)
	}
	l.logger.Info("record saved", "name", r.Name, "level", r.LevelID, "mistakes", r.Score, "seconds", r.Time)

	if l.sink != nil {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			if err := l.sink.Send(context.WithoutCancel(ctx), r); err != nil {
				l.logger.Warn("remote sync failed", "error", err)
			}
		}()
	}
	return nil
}

// History returns every stored record, best first.
func (l *Leaderboard) History(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	records, err := l.storage.LoadAll()
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("could not load score history: %w", err)
	}
	return SortRecords(records), nil
}

// Wait blocks until background sink deliveries have finished.
func (l *Leaderboard) Wait() {
	l.wg.Wait()
}
