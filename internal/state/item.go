package state

import (
	"akaun-master/internal/catalog"

	"github.com/google/uuid"
)

// Item is one draggable card. Several items may share a definition; only
// the ID tells them apart.
type Item struct {
	ID           string
	Label        string
	DefinitionID string
	Category     string
}

func spawn(def catalog.ItemDef) Item {
	return Item{
		ID:           uuid.NewString(),
		Label:        def.Label,
		DefinitionID: def.ID,
		Category:     def.Category,
	}
}

// duplicate mints a new item of the same kind.
func (it Item) duplicate() Item {
	c := it
	c.ID = uuid.NewString()
	return c
}

// OriginKind says where a dragged item was picked up.
type OriginKind int

const (
	OriginBank OriginKind = iota
	OriginSlot
)

func (o OriginKind) String() string {
	if o == OriginSlot {
		return "slot"
	}
	return "bank"
}

// Drop is the canonical "item dropped on zone" gesture.
type Drop struct {
	InstanceID    string
	Origin        OriginKind
	OriginSubSlot catalog.SubSlotID // only for OriginSlot
	Target        catalog.SubSlotID
}

// Outcome is what the engine made of the last drop.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomePlaced
	OutcomeSurplus
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlaced:
		return "placed"
	case OutcomeSurplus:
		return "surplus"
	case OutcomeRejected:
		return "rejected"
	default:
		return "ignored"
	}
}
