package state

import (
	"time"

	"akaun-master/internal/catalog"
)

// validateDrop checks that the drop can be applied at all and returns the
// target and the dragged item.
func (s *State) validateDrop(d Drop) (catalog.SubSlotRef, Item, bool) {
	if s.Completed || s.Cancelled || d.InstanceID == "" {
		return catalog.SubSlotRef{}, Item{}, false
	}
	ref, ok := s.Level.Resolve(d.Target)
	if !ok {
		return catalog.SubSlotRef{}, Item{}, false
	}
	if _, occupied := s.Placements.Get(d.Target); occupied {
		return catalog.SubSlotRef{}, Item{}, false
	}

	var item Item
	switch d.Origin {
	case OriginBank:
		item, ok = s.Bank.Get(d.InstanceID)
	case OriginSlot:
		if d.OriginSubSlot == "" || s.IsPending(d.OriginSubSlot) {
			return catalog.SubSlotRef{}, Item{}, false
		}
		item, ok = s.Placements.Get(d.OriginSubSlot)
		ok = ok && item.ID == d.InstanceID
	default:
		ok = false
	}
	if !ok {
		return catalog.SubSlotRef{}, Item{}, false
	}
	return ref, item, true
}

func (s *State) takeFromOrigin(d Drop) {
	switch d.Origin {
	case OriginBank:
		s.Bank.Remove(d.InstanceID)
	case OriginSlot:
		s.Placements.ClearAndReturn(d.OriginSubSlot)
	}
}

// schedule marks a sub-slot as pending and hands its follow-up to the scheduler.
func (s *State) schedule(kind TaskKind, id catalog.SubSlotID, instance string, after time.Duration) {
	s.pending[id] = pendingClear{kind: kind, instance: instance}
	s.scheduler.Schedule(Task{
		Kind:     kind,
		Session:  s.SessionID,
		SubSlot:  id,
		Instance: instance,
		After:    after,
	})
}

func (s *State) applyTask(t Task) bool {
	if s.Cancelled || t.Session != s.SessionID {
		return false
	}

	if t.Kind == TaskSettle {
		if !s.settling {
			return false
		}
		s.settling = false
		if !s.Completed && s.IsComplete() {
			s.Completed = true
			s.logger.Info("level complete", "mistakes", s.Mistakes)
			if s.onComplete != nil {
				s.onComplete()
			}
		}
		return true
	}

	p, ok := s.pending[t.SubSlot]
	if !ok || p.kind != t.Kind || p.instance != t.Instance {
		return false
	}
	delete(s.pending, t.SubSlot)
	occupant, ok := s.Placements.Get(t.SubSlot)
	if !ok || occupant.ID != t.Instance {
		return false
	}
	s.Placements.Clear(t.SubSlot)

	switch t.Kind {
	case TaskSurplusClear:
		s.Destroyed++
		s.logger.Debug("surplus cleared", "item", occupant.Label, "slot", t.SubSlot)
	case TaskBounce:
		if s.ErrorSlot == t.SubSlot {
			s.ErrorSlot = ""
		}
		s.Bank.AddPenaltyCopies(occupant, s.Rules.PenaltyCopies)
		s.logger.Debug("item bounced", "item", occupant.Label, "slot", t.SubSlot, "bank", s.Bank.Len())
	}
	return true
}

// identity is the equivalence class used to decide whether a correct drop
// is a surplus copy: the category when the item has one, otherwise the
// operator symbol for operator halves, otherwise the definition.
type identity struct {
	category   string
	operator   string
	definition string
}

func identityOf(it Item, k catalog.Kind) identity {
	switch {
	case it.Category != "":
		return identity{category: it.Category}
	case k == catalog.KindOp:
		return identity{operator: it.Label}
	default:
		return identity{definition: it.DefinitionID}
	}
}

func (id identity) matches(it Item) bool {
	switch {
	case id.category != "":
		return it.Category == id.category
	case id.operator != "":
		return it.Label == id.operator
	default:
		return it.DefinitionID == id.definition
	}
}

func (id identity) neededBy(ref catalog.SubSlotRef) bool {
	switch {
	case id.category != "":
		return ref.Kind == catalog.KindMain && ref.Slot.AcceptedCategory == id.category
	case id.operator != "":
		return ref.Kind == catalog.KindOp && ref.Slot.AcceptedOperator == id.operator
	default:
		return ref.Kind == catalog.KindMain && ref.Slot.AcceptedLabel == id.definition
	}
}

// isSurplus reports whether, after this drop, more items of the same class
// would remain than there are other sub-slots still waiting for one.
func (s *State) isSurplus(it Item, target catalog.SubSlotRef, d Drop) bool {
	id := identityOf(it, target.Kind)

	remaining := s.Bank.CountMatching(func(b Item) bool {
		return b.ID != it.ID && id.matches(b)
	})

	needed := 0
	for _, ref := range s.Level.SubSlots() {
		if ref.ID == target.ID || !id.neededBy(ref) {
			continue
		}
		// A slot the card is being moved out of is about to be empty.
		vacated := d.Origin == OriginSlot && ref.ID == d.OriginSubSlot
		if _, occupied := s.Placements.Get(ref.ID); occupied && !vacated && !s.IsPending(ref.ID) {
			continue
		}
		needed++
	}

	return remaining > needed
}

// IsPending reports whether the sub-slot is waiting for a delayed clear.
func (s *State) IsPending(id catalog.SubSlotID) bool {
	_, ok := s.pending[id]
	return ok
}

// IsComplete reports whether every sub-slot the level owns holds an item
// and nothing is about to be cleared.
func (s *State) IsComplete() bool {
	if s.ErrorSlot != "" || len(s.pending) > 0 {
		return false
	}
	for _, ref := range s.Level.SubSlots() {
		if _, ok := s.Placements.Get(ref.ID); !ok {
			return false
		}
	}
	return true
}

// Filled counts the occupied sub-slots that are not pending a clear.
func (s *State) Filled() int {
	n := 0
	for _, ref := range s.Level.SubSlots() {
		if _, ok := s.Placements.Get(ref.ID); ok && !s.IsPending(ref.ID) {
			n++
		}
	}
	return n
}

// Conserved reports whether every item ever minted is accounted for.
func (s *State) Conserved() bool {
	return s.Bank.Spawned()-s.Destroyed == s.Bank.Len()+s.Placements.Len()
}
