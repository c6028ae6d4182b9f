package state

import (
	"time"

	"akaun-master/internal/catalog"
)

// TaskKind identifies a delayed follow-up of a drop.
type TaskKind int

const (
	TaskSurplusClear TaskKind = iota // silently empty a slot holding a surplus copy
	TaskBounce                       // return a wrong item with penalty copies
	TaskSettle                       // confirm completion
)

func (k TaskKind) String() string {
	switch k {
	case TaskSurplusClear:
		return "surplus"
	case TaskBounce:
		return "bounce"
	default:
		return "settle"
	}
}

// Task is a deferred mutation. It only applies to the session that
// scheduled it and, for slot tasks, only while the sub-slot still holds
// Instance.
type Task struct {
	Kind     TaskKind
	Session  string
	SubSlot  catalog.SubSlotID
	Instance string
	After    time.Duration
}

// Scheduler delivers a task back to State.RunTask once its delay elapsed.
type Scheduler interface {
	Schedule(t Task)
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(t Task)

func (f SchedulerFunc) Schedule(t Task) { f(t) }

// Rules are the timing and penalty constants of a level session.
type Rules struct {
	BounceDelay   time.Duration
	SurplusDelay  time.Duration
	SettleDelay   time.Duration
	PenaltyCopies int
}

func DefaultRules() Rules {
	return Rules{
		BounceDelay:   3 * time.Second,
		SurplusDelay:  time.Second,
		SettleDelay:   500 * time.Millisecond,
		PenaltyCopies: 2,
	}
}
