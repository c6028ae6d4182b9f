package state

import (
	"context"
	"log/slog"

	"akaun-master/internal/catalog"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
)

type Options struct {
	Rules      Rules
	Shuffler   Shuffler
	Scheduler  Scheduler
	Logger     *slog.Logger
	OnComplete func() // called once, when the level settles complete
}

// State is the placement and resolution engine of one level session.
type State struct {
	SessionID  string
	Level      *catalog.Level
	Rules      Rules
	Bank       *Bank
	Placements *Placements
	ErrorSlot  catalog.SubSlotID // at most one sub-slot shows the error marker
	Mistakes   int
	Destroyed  int // surplus copies cleared for good
	Completed  bool
	Cancelled  bool
	FSM        *fsm.FSM

	CurrentDrop Drop
	CurrentTask Task
	LastOutcome Outcome

	target     catalog.SubSlotRef
	dragged    Item
	pending    map[catalog.SubSlotID]pendingClear
	settling   bool
	scheduler  Scheduler
	onComplete func()
	logger     *slog.Logger
}

type pendingClear struct {
	kind     TaskKind
	instance string
}

func NewState(level *catalog.Level, opts Options) *State {
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = SchedulerFunc(func(Task) {})
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &State{
		SessionID:  uuid.NewString(),
		Level:      level,
		Rules:      opts.Rules,
		Bank:       NewBank(opts.Shuffler),
		Placements: NewPlacements(),
		pending:    make(map[catalog.SubSlotID]pendingClear),
		scheduler:  opts.Scheduler,
		onComplete: opts.OnComplete,
	}
	s.logger = opts.Logger.With("component", "state", "level", level.ID, "session", s.SessionID)

	s.FSM = fsm.NewFSM(
		"start",
		getStateTransitions(),
		getStateCallbacks(s),
	)

	return s
}

// Start fills the bank and opens the level for drops.
func (s *State) Start(ctx context.Context) error {
	return s.FSM.Event(ctx, "initLevel")
}

// HandleDrop resolves one drop gesture. Drops that cannot apply are ignored
// and leave every piece of state untouched.
func (s *State) HandleDrop(ctx context.Context, d Drop) Outcome {
	s.LastOutcome = OutcomeIgnored
	if !s.FSM.Is("idle") {
		return s.LastOutcome
	}
	s.CurrentDrop = d
	_ = s.FSM.Event(ctx, "drop")
	return s.LastOutcome
}

// RunTask applies a delayed task delivered by the scheduler. Tasks from
// another session, or whose sub-slot changed meanwhile, are dropped.
func (s *State) RunTask(ctx context.Context, t Task) {
	if !s.FSM.Is("idle") {
		return
	}
	s.CurrentTask = t
	_ = s.FSM.Event(ctx, "task")
}

// Cancel stops the session. Later drops and tasks are ignored.
func (s *State) Cancel() {
	if s.Cancelled {
		return
	}
	s.Cancelled = true
	s.logger.Debug("session cancelled")
}

func getStateTransitions() []fsm.EventDesc {
	return fsm.Events{
		{Name: "initLevel", Src: []string{"start"}, Dst: "idle"},

		// Drops
		{Name: "drop", Src: []string{"idle"}, Dst: "resolving"},
		{Name: "accept", Src: []string{"resolving"}, Dst: "placing"},
		{Name: "reject", Src: []string{"resolving"}, Dst: "bouncing"},
		{Name: "placed", Src: []string{"placing"}, Dst: "checking"},
		{Name: "bounced", Src: []string{"bouncing"}, Dst: "checking"},

		// Delayed tasks
		{Name: "task", Src: []string{"idle"}, Dst: "applyingTask"},
		{Name: "applied", Src: []string{"applyingTask"}, Dst: "checking"},

		{Name: "ignore", Src: []string{"resolving", "applyingTask"}, Dst: "idle"},
		{Name: "wait", Src: []string{"checking"}, Dst: "idle"},
	}
}

func getStateCallbacks(s *State) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_idle": func(ctx context.Context, e *fsm.Event) {
			if e.Event == "initLevel" {
				s.Bank.Initialize(s.Level.Items)
				s.logger.Info("level started", "items", s.Bank.Len(), "subslots", len(s.Level.SubSlots()))
			}
		},
		"enter_resolving": func(ctx context.Context, e *fsm.Event) {
			ref, item, ok := s.validateDrop(s.CurrentDrop)
			if !ok {
				s.logger.Debug("drop ignored", "target", s.CurrentDrop.Target, "origin", s.CurrentDrop.Origin)
				e.FSM.Event(ctx, "ignore")
				return
			}
			s.target = ref
			s.dragged = item

			if ref.Slot.Accepts(ref.Kind, item.Label, item.DefinitionID, item.Category) {
				e.FSM.Event(ctx, "accept")
				return
			}
			e.FSM.Event(ctx, "reject")
		},
		"enter_placing": func(ctx context.Context, e *fsm.Event) {
			// Surplus is measured before the item leaves its origin.
			surplus := s.isSurplus(s.dragged, s.target, s.CurrentDrop)

			s.takeFromOrigin(s.CurrentDrop)
			s.Placements.Set(s.target.ID, s.dragged)
			s.LastOutcome = OutcomePlaced

			if surplus {
				s.LastOutcome = OutcomeSurplus
				s.schedule(TaskSurplusClear, s.target.ID, s.dragged.ID, s.Rules.SurplusDelay)
			}
			s.logger.Debug("item placed", "item", s.dragged.Label, "target", s.target.ID, "surplus", surplus)
			e.FSM.Event(ctx, "placed")
		},
		"enter_bouncing": func(ctx context.Context, e *fsm.Event) {
			s.takeFromOrigin(s.CurrentDrop)
			s.Placements.Set(s.target.ID, s.dragged)
			s.ErrorSlot = s.target.ID
			s.Mistakes++
			s.LastOutcome = OutcomeRejected

			s.schedule(TaskBounce, s.target.ID, s.dragged.ID, s.Rules.BounceDelay)
			s.logger.Debug("item rejected", "item", s.dragged.Label, "target", s.target.ID, "mistakes", s.Mistakes)
			e.FSM.Event(ctx, "bounced")
		},
		"enter_applyingTask": func(ctx context.Context, e *fsm.Event) {
			if !s.applyTask(s.CurrentTask) {
				e.FSM.Event(ctx, "ignore")
				return
			}
			e.FSM.Event(ctx, "applied")
		},
		"enter_checking": func(ctx context.Context, e *fsm.Event) {
			if !s.Completed && !s.settling && s.IsComplete() {
				s.settling = true
				s.scheduler.Schedule(Task{Kind: TaskSettle, Session: s.SessionID, After: s.Rules.SettleDelay})
			}
			e.FSM.Event(ctx, "wait")
		},
	}
}
