package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"akaun-master/internal/catalog"
	"akaun-master/internal/config"
	"akaun-master/internal/game"
	"akaun-master/internal/logger"
	"akaun-master/internal/scoring"
	"akaun-master/internal/state"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type focusArea int

const (
	focusBank focusArea = iota
	focusBoard
)

// heldCard is a card picked up but not dropped yet. Picking up does not
// change the game; only the drop does.
type heldCard struct {
	item          state.Item
	origin        state.OriginKind
	originSubSlot catalog.SubSlotID
}

type LocalState struct {
	Session *game.Session
	sched   *teaScheduler
	logger  *slog.Logger

	nameInput  textinput.Model
	scores     table.Model
	menuCursor int

	focus       focusArea
	bankCursor  int
	boardCursor int
	held        *heldCard

	message string
	err     error
}

func initialModel(sess *game.Session, sched *teaScheduler, log *slog.Logger) *LocalState {
	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.CharLimit = 40
	ti.Width = 30
	ti.Focus()

	return &LocalState{
		Session:   sess,
		sched:     sched,
		logger:    log,
		nameInput: ti,
		scores:    newScoreTable(),
	}
}

func (s *LocalState) Init() tea.Cmd {
	if s.Session.Screen() == game.ScreenGame {
		return tickCmd(s.Session.Current.State.SessionID)
	}
	return textinput.Blink
}

func (s *LocalState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg := msg.(type) {
	case TickMsg:
		s.Session.HandleTick(msg.Session)
		if s.Session.Screen() == game.ScreenGame && s.Session.Current.State.SessionID == msg.Session && s.Session.Current.Running() {
			return s, tickCmd(msg.Session)
		}
		return s, nil

	case TaskMsg:
		s.Session.HandleTask(ctx, state.Task(msg))
		if s.Session.Screen() == game.ScreenLeaderboard {
			s.enterLeaderboard()
		}
		return s, s.sched.Flush()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return s, tea.Quit
		}
		s.err = nil

		var cmd tea.Cmd
		switch s.Session.Screen() {
		case game.ScreenWelcome:
			cmd = s.updateWelcome(ctx, msg)
		case game.ScreenMenu:
			cmd = s.updateMenu(ctx, msg)
		case game.ScreenGame:
			cmd = s.updateGame(ctx, msg)
		case game.ScreenLeaderboard:
			cmd = s.updateLeaderboard(ctx, msg)
		}
		return s, tea.Batch(cmd, s.sched.Flush())
	}

	return s, nil
}

func (s *LocalState) updateWelcome(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEnter {
		if err := s.Session.EnterName(ctx, s.nameInput.Value()); err != nil {
			s.err = err
			return nil
		}
		s.nameInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.nameInput, cmd = s.nameInput.Update(msg)
	return cmd
}

func (s *LocalState) updateMenu(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	levels := s.Session.Catalog.Levels()
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if s.menuCursor > 0 {
			s.menuCursor--
		}
	case "down", "j":
		if s.menuCursor < len(levels)-1 {
			s.menuCursor++
		}
	case "s":
		if err := s.Session.ViewScores(ctx); err != nil {
			s.err = err
			return nil
		}
		s.enterLeaderboard()
	case "enter", " ":
		return s.play(ctx, levels[s.menuCursor].ID)
	}
	return nil
}

func (s *LocalState) play(ctx context.Context, levelID string) tea.Cmd {
	if err := s.Session.Play(ctx, levelID); err != nil {
		s.err = err
		return nil
	}
	s.resetBoard()
	return tickCmd(s.Session.Current.State.SessionID)
}

func (s *LocalState) resetBoard() {
	s.focus = focusBank
	s.bankCursor = 0
	s.boardCursor = 0
	s.held = nil
	s.message = ""
}

func (s *LocalState) updateGame(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	st := s.Session.Current.State
	bank := st.Bank.Items()
	subs := st.Level.SubSlots()

	switch msg.String() {
	case "esc":
		if s.held != nil {
			s.held = nil
			return nil
		}
		if err := s.Session.Exit(ctx); err != nil {
			s.err = err
		}
		return nil
	case "ctrl+r":
		if err := s.Session.Restart(ctx); err != nil {
			s.err = err
			return nil
		}
		s.resetBoard()
		return tickCmd(s.Session.Current.State.SessionID)
	case "tab":
		if s.focus == focusBank {
			s.focus = focusBoard
		} else {
			s.focus = focusBank
		}
	case "left", "h":
		if s.focus == focusBank && s.bankCursor > 0 {
			s.bankCursor--
		}
	case "right", "l":
		if s.focus == focusBank && s.bankCursor < len(bank)-1 {
			s.bankCursor++
		}
	case "up", "k":
		if s.focus == focusBoard && s.boardCursor > 0 {
			s.boardCursor--
		}
	case "down", "j":
		if s.focus == focusBoard && s.boardCursor < len(subs)-1 {
			s.boardCursor++
		}
	case "enter", " ":
		if s.held == nil {
			s.pickUp(st, bank, subs)
		} else if s.focus == focusBoard {
			s.drop(ctx, subs[s.boardCursor].ID)
		} else {
			s.held = nil
		}
	}
	s.clampCursors(len(st.Bank.Items()), len(subs))
	return nil
}

func (s *LocalState) pickUp(st *state.State, bank []state.Item, subs []catalog.SubSlotRef) {
	switch s.focus {
	case focusBank:
		if len(bank) == 0 {
			return
		}
		s.held = &heldCard{item: bank[s.bankCursor], origin: state.OriginBank}
		s.focus = focusBoard
	case focusBoard:
		id := subs[s.boardCursor].ID
		it, ok := st.Placements.Get(id)
		if !ok || st.IsPending(id) {
			return
		}
		s.held = &heldCard{item: it, origin: state.OriginSlot, originSubSlot: id}
	}
	s.message = ""
	s.logger.Debug("card picked up", "item", s.held.item.Label, "origin", s.held.origin)
}

func (s *LocalState) drop(ctx context.Context, target catalog.SubSlotID) {
	h := s.held
	out := s.Session.HandleDrop(ctx, state.Drop{
		InstanceID:    h.item.ID,
		Origin:        h.origin,
		OriginSubSlot: h.originSubSlot,
		Target:        target,
	})

	switch out {
	case state.OutcomePlaced:
		s.message = fmt.Sprintf("%s placed.", h.item.Label)
	case state.OutcomeSurplus:
		s.message = fmt.Sprintf("%s is a spare copy and will be cleared.", h.item.Label)
	case state.OutcomeRejected:
		s.message = fmt.Sprintf("%s does not belong there. It comes back with %d extra copies.", h.item.Label, s.Session.Current.State.Rules.PenaltyCopies)
	default:
		s.message = "Can't drop there."
		return
	}
	s.held = nil
	s.focus = focusBank
}

func (s *LocalState) clampCursors(bankLen, subLen int) {
	if s.bankCursor >= bankLen {
		s.bankCursor = max(bankLen-1, 0)
	}
	if s.boardCursor >= subLen {
		s.boardCursor = max(subLen-1, 0)
	}
}

func (s *LocalState) updateLeaderboard(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "esc", "enter", "m":
		if err := s.Session.Back(ctx); err != nil {
			s.err = err
		}
		return nil
	}
	var cmd tea.Cmd
	s.scores, cmd = s.scores.Update(msg)
	return cmd
}

func (s *LocalState) enterLeaderboard() {
	s.held = nil
	s.scores.SetRows(scoreRows(s.Session.History))
	s.scores.GotoTop()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a YAML config file")
	name := flag.String("name", "", "Player name (skips the welcome screen)")
	level := flag.String("level", "", "Start this level right away (needs -name)")
	seed := flag.Int64("seed", 0, "Shuffle seed, 0 for a random one")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.Open(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	cat, err := catalog.LoadFiles(cfg.Catalog.Paths)
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}

	storage, err := scoring.NewJSONFileStorage(cfg.Scores.Path)
	if err != nil {
		return fmt.Errorf("failed to create score storage: %w", err)
	}
	var sink scoring.Sink
	if cfg.Scores.RemoteURL != "" {
		sink = scoring.NewHTTPSink(cfg.Scores.RemoteURL, cfg.Scores.RemoteTimeout)
	}
	lb := scoring.NewLeaderboard(storage, sink, log)
	defer lb.Wait()

	var shuffler state.Shuffler
	if *seed != 0 {
		shuffler = rand.New(rand.NewSource(*seed))
	}

	sched := &teaScheduler{}
	sess := game.NewSession(cat, lb, game.Options{
		Rules: state.Rules{
			BounceDelay:   cfg.Rules.BounceDelay,
			SurplusDelay:  cfg.Rules.SurplusDelay,
			SettleDelay:   cfg.Rules.SettleDelay,
			PenaltyCopies: cfg.Rules.PenaltyCopies,
		},
		Shuffler:  shuffler,
		Scheduler: sched,
		Logger:    log,
	})

	ctx := context.Background()
	if *name != "" {
		if err := sess.EnterName(ctx, *name); err != nil {
			return err
		}
		if *level != "" {
			if err := sess.Play(ctx, *level); err != nil {
				return err
			}
		}
	} else if *level != "" {
		return errors.New("-level needs -name")
	}

	model := initialModel(sess, sched, log)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running the program: %w", err)
	}
	return nil
}
