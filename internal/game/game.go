package game

import (
	"context"

	"akaun-master/internal/catalog"
	"akaun-master/internal/state"
)

// Game is one attempt at one level: the resolution engine plus the
// elapsed-time counter shown to the player.
type Game struct {
	State   *state.State
	Elapsed int // seconds
	stopped bool
}

// NewGame creates a game for level. Its state is not started until Init.
func NewGame(level *catalog.Level, opts state.Options) *Game {
	g := &Game{}
	onComplete := opts.OnComplete
	opts.OnComplete = func() {
		g.stopped = true
		if onComplete != nil {
			onComplete()
		}
	}
	g.State = state.NewState(level, opts)
	return g
}

// Init fills the bank and opens the level.
func (g *Game) Init(ctx context.Context) error {
	return g.State.Start(ctx)
}

// HandleTick advances the timer by one second while the level is running.
func (g *Game) HandleTick() {
	if g.stopped || g.State.Completed || g.State.Cancelled {
		return
	}
	g.Elapsed++
}

func (g *Game) HandleDrop(ctx context.Context, d state.Drop) state.Outcome {
	return g.State.HandleDrop(ctx, d)
}

func (g *Game) HandleTask(ctx context.Context, t state.Task) {
	g.State.RunTask(ctx, t)
}

// Stop freezes the timer and invalidates every task still in flight.
func (g *Game) Stop() {
	g.stopped = true
	g.State.Cancel()
}

// Running reports whether the timer still counts.
func (g *Game) Running() bool {
	return !g.stopped && !g.State.Cancelled
}
