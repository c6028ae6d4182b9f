package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"akaun-master/internal/catalog"
	"akaun-master/internal/scoring"
	"akaun-master/internal/state"

	"github.com/looplab/fsm"
)

var (
	ErrEmptyName    = errors.New("player name is empty")
	ErrUnknownLevel = errors.New("unknown level")
)

// Screens of the session.
const (
	ScreenWelcome     = "welcome"
	ScreenMenu        = "menu"
	ScreenGame        = "game"
	ScreenLeaderboard = "leaderboard"
)

// Scorer receives finished games and serves the leaderboard.
type Scorer interface {
	Submit(ctx context.Context, r scoring.Record) error
	History(ctx context.Context) ([]scoring.Record, error)
}

type Options struct {
	Rules     state.Rules
	Shuffler  state.Shuffler
	Scheduler state.Scheduler
	Logger    *slog.Logger
	Now       func() time.Time
}

// Session sequences the screens, owns the current game and hands finished
// games to the scorer.
type Session struct {
	Catalog    *catalog.Catalog
	Player     string
	Current    *Game
	LastRecord *scoring.Record
	SubmitErr  error
	History    []scoring.Record
	HistoryErr error
	FSM        *fsm.FSM

	scorer Scorer
	opts   Options
	logger *slog.Logger
}

func NewSession(c *catalog.Catalog, scorer Scorer, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		Catalog: c,
		scorer:  scorer,
		opts:    opts,
		logger:  opts.Logger.With("component", "session"),
	}
	s.FSM = fsm.NewFSM(
		ScreenWelcome,
		getScreenTransitions(),
		getScreenCallbacks(s),
	)
	return s
}

func (s *Session) Screen() string {
	return s.FSM.Current()
}

// EnterName leaves the welcome screen. Blank names are refused.
func (s *Session) EnterName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.Player = name
	if err := s.FSM.Event(ctx, "enterName"); err != nil {
		return fmt.Errorf("could not leave welcome screen: %w", err)
	}
	return nil
}

// Play starts a fresh attempt at the level.
func (s *Session) Play(ctx context.Context, levelID string) error {
	if _, ok := s.Catalog.Level(levelID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, levelID)
	}
	if err := s.FSM.Event(ctx, "play", levelID); err != nil {
		return fmt.Errorf("could not start level %s: %w", levelID, err)
	}
	if s.Current == nil || s.Current.State.Level.ID != levelID {
		return fmt.Errorf("level %s did not start", levelID)
	}
	return nil
}

// Restart throws the current attempt away and starts the level again.
func (s *Session) Restart(ctx context.Context) error {
	if !s.FSM.Is(ScreenGame) || s.Current == nil {
		return nil
	}
	id := s.Current.State.Level.ID
	s.Current.Stop()
	return s.startLevel(ctx, id)
}

// Exit abandons the level and returns to the menu.
func (s *Session) Exit(ctx context.Context) error {
	return s.FSM.Event(ctx, "exit")
}

func (s *Session) ViewScores(ctx context.Context) error {
	return s.FSM.Event(ctx, "viewScores")
}

func (s *Session) Back(ctx context.Context) error {
	return s.FSM.Event(ctx, "back")
}

// HandleDrop forwards a drop to the running game.
func (s *Session) HandleDrop(ctx context.Context, d state.Drop) state.Outcome {
	if !s.FSM.Is(ScreenGame) || s.Current == nil {
		return state.OutcomeIgnored
	}
	return s.Current.HandleDrop(ctx, d)
}

// HandleTask delivers a delayed task and finishes the level once it
// completes.
func (s *Session) HandleTask(ctx context.Context, t state.Task) {
	if !s.FSM.Is(ScreenGame) || s.Current == nil {
		return
	}
	s.Current.HandleTask(ctx, t)
	if s.Current.State.Completed {
		s.finish(ctx)
	}
}

// HandleTick advances the timer of the game that scheduled the tick.
// Ticks of a discarded attempt are dropped.
func (s *Session) HandleTick(sessionID string) {
	if !s.FSM.Is(ScreenGame) || s.Current == nil || s.Current.State.SessionID != sessionID {
		return
	}
	s.Current.HandleTick()
}

func (s *Session) startLevel(ctx context.Context, levelID string) error {
	level, ok := s.Catalog.Level(levelID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, levelID)
	}

	g := NewGame(level, state.Options{
		Rules:     s.opts.Rules,
		Shuffler:  s.opts.Shuffler,
		Scheduler: s.opts.Scheduler,
		Logger:    s.opts.Logger,
	})
	if err := g.Init(ctx); err != nil {
		return fmt.Errorf("could not initialize level %s: %w", levelID, err)
	}
	s.Current = g
	s.LastRecord = nil
	s.SubmitErr = nil
	s.logger.Info("level entered", "level", levelID, "player", s.Player, "session", g.State.SessionID)
	return nil
}

func (s *Session) finish(ctx context.Context) {
	g := s.Current
	r := scoring.Record{
		Name:      s.Player,
		LevelID:   g.State.Level.ID,
		Score:     g.State.Mistakes,
		Time:      g.Elapsed,
		Timestamp: s.opts.Now().UnixMilli(),
	}
	s.LastRecord = &r

	if err := s.scorer.Submit(ctx, r); err != nil {
		s.SubmitErr = err
		s.logger.Error("could not submit record", "error", err)
	}
	if err := s.FSM.Event(ctx, "complete"); err != nil {
		s.logger.Error("could not show leaderboard", "error", err)
	}
}

func (s *Session) refreshHistory(ctx context.Context) {
	s.History, s.HistoryErr = s.scorer.History(ctx)
	if s.HistoryErr != nil {
		s.logger.Warn("could not load history", "error", s.HistoryErr)
	}
}

func getScreenTransitions() []fsm.EventDesc {
	return fsm.Events{
		{Name: "enterName", Src: []string{ScreenWelcome}, Dst: ScreenMenu},
		{Name: "play", Src: []string{ScreenMenu}, Dst: ScreenGame},
		{Name: "exit", Src: []string{ScreenGame}, Dst: ScreenMenu},
		{Name: "complete", Src: []string{ScreenGame}, Dst: ScreenLeaderboard},
		{Name: "viewScores", Src: []string{ScreenMenu}, Dst: ScreenLeaderboard},
		{Name: "back", Src: []string{ScreenLeaderboard}, Dst: ScreenMenu},
	}
}

func getScreenCallbacks(s *Session) map[string]fsm.Callback {
	return fsm.Callbacks{
		"before_enterName": func(ctx context.Context, e *fsm.Event) {
			if s.Player == "" {
				e.Cancel(ErrEmptyName)
			}
		},
		"enter_game": func(ctx context.Context, e *fsm.Event) {
			var levelID string
			if len(e.Args) > 0 {
				levelID, _ = e.Args[0].(string)
			}
			if err := s.startLevel(ctx, levelID); err != nil {
				s.logger.Error("could not start level", "level", levelID, "error", err)
				e.Err = err
			}
		},
		"leave_game": func(ctx context.Context, e *fsm.Event) {
			if s.Current != nil {
				s.Current.Stop()
			}
		},
		"enter_leaderboard": func(ctx context.Context, e *fsm.Event) {
			s.refreshHistory(ctx)
		},
	}
}
