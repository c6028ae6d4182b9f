package catalog

import "strings"

// Role controls how a statement row takes part in the game.
type Role string

const (
	RoleInteractive Role = "interactive"
	RoleStatic      Role = "static" // display only, never a drop target
	RoleHeader      Role = "header" // styled as a header; a drop target only if it has a rule
)

// Kind identifies which half of a slot a sub-slot address refers to.
type Kind int

const (
	KindMain Kind = iota
	KindOp
)

func (k Kind) String() string {
	if k == KindOp {
		return "op"
	}
	return "main"
}

// SubSlotID addresses a single drop location: "<slot>" for plain slots,
// "<slot>-op" / "<slot>-main" for slots with an operator half.
type SubSlotID string

const (
	opSuffix   = "-op"
	mainSuffix = "-main"
)

// ItemDef is one kind of answer card.
type ItemDef struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label" validate:"required"`
	Category string `yaml:"category,omitempty"`
}

// Slot is one row of the statement.
type Slot struct {
	ID               string `yaml:"id" validate:"required"`
	AcceptedLabel    string `yaml:"accepted_label,omitempty"`
	AcceptedCategory string `yaml:"accepted_category,omitempty"`
	HasOperator      bool   `yaml:"has_operator,omitempty"`
	AcceptedOperator string `yaml:"accepted_operator,omitempty" validate:"omitempty,oneof=Tambah Tolak"`
	Role             Role   `yaml:"role,omitempty" validate:"omitempty,oneof=interactive static header"`
	Display          string `yaml:"display,omitempty"`
	Column           int    `yaml:"column" validate:"gte=0,lte=2"`
	Indent           int    `yaml:"indent,omitempty" validate:"gte=0"`
}

// Composition pulls the slots and items of another level into this one.
type Composition struct {
	Level     string `yaml:"level" validate:"required"`
	SkipSlots int    `yaml:"skip_slots,omitempty" validate:"gte=0"`
}

// Level is a statement to complete plus the cards that complete it.
type Level struct {
	ID       string        `yaml:"id" validate:"required"`
	Title    string        `yaml:"title"`
	Subtitle string        `yaml:"subtitle"`
	Summary  string        `yaml:"summary,omitempty"`
	Compose  []Composition `yaml:"compose,omitempty" validate:"dive"`
	Slots    []Slot        `yaml:"slots" validate:"dive"`
	Items    []ItemDef     `yaml:"items" validate:"dive"`
}

// HasRule reports whether the slot demands anything at all.
func (s Slot) HasRule() bool {
	return s.HasOperator || s.AcceptedLabel != "" || s.AcceptedCategory != ""
}

// IsDropTarget reports whether items may ever be dropped on the slot.
func (s Slot) IsDropTarget() bool {
	return s.Role != RoleStatic && s.HasRule()
}

// IsHeader reports whether the row is rendered as a section header.
func (s Slot) IsHeader() bool {
	return s.Role == RoleHeader
}

// Owns reports whether the slot has a sub-slot of the given kind.
func (s Slot) Owns(k Kind) bool {
	if !s.IsDropTarget() {
		return false
	}
	if k == KindOp {
		return s.HasOperator
	}
	return s.AcceptedLabel != "" || s.AcceptedCategory != ""
}

// Address returns the sub-slot id of the given half of the slot.
func (s Slot) Address(k Kind) SubSlotID {
	if !s.HasOperator {
		return SubSlotID(s.ID)
	}
	if k == KindOp {
		return SubSlotID(s.ID + opSuffix)
	}
	return SubSlotID(s.ID + mainSuffix)
}

// Accepts applies the correctness rule for a drop on one half of the slot.
// An exact label match and a category match are each sufficient on the main half.
func (s Slot) Accepts(k Kind, label, definitionID, category string) bool {
	if !s.Owns(k) {
		return false
	}
	if k == KindOp {
		return label == s.AcceptedOperator
	}
	if s.AcceptedLabel != "" && definitionID == s.AcceptedLabel {
		return true
	}
	return s.AcceptedCategory != "" && category == s.AcceptedCategory
}

// Label is the text rendered for display-only rows.
func (s Slot) Label() string {
	return s.AcceptedLabel
}

// SubSlotRef ties a sub-slot address to the slot that owns it.
type SubSlotRef struct {
	ID   SubSlotID
	Slot Slot
	Kind Kind
}

// Slot looks a slot up by id.
func (l *Level) Slot(id string) (Slot, bool) {
	for _, s := range l.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// Resolve maps a sub-slot address to its owning slot and half. Addresses of
// display-only rows and halves the slot does not own do not resolve.
func (l *Level) Resolve(id SubSlotID) (SubSlotRef, bool) {
	raw := string(id)
	if s, ok := l.Slot(raw); ok && !s.HasOperator {
		if !s.Owns(KindMain) {
			return SubSlotRef{}, false
		}
		return SubSlotRef{ID: id, Slot: s, Kind: KindMain}, true
	}

	var (
		base string
		kind Kind
	)
	switch {
	case strings.HasSuffix(raw, opSuffix):
		base, kind = strings.TrimSuffix(raw, opSuffix), KindOp
	case strings.HasSuffix(raw, mainSuffix):
		base, kind = strings.TrimSuffix(raw, mainSuffix), KindMain
	default:
		return SubSlotRef{}, false
	}

	s, ok := l.Slot(base)
	if !ok || !s.HasOperator || !s.Owns(kind) {
		return SubSlotRef{}, false
	}
	return SubSlotRef{ID: id, Slot: s, Kind: kind}, true
}

// SubSlots lists every sub-slot the level expects to be filled, in row order.
func (l *Level) SubSlots() []SubSlotRef {
	var refs []SubSlotRef
	for _, s := range l.Slots {
		for _, k := range []Kind{KindOp, KindMain} {
			if s.Owns(k) {
				refs = append(refs, SubSlotRef{ID: s.Address(k), Slot: s, Kind: k})
			}
		}
	}
	return refs
}

// Catalog is the read-only set of playable levels.
type Catalog struct {
	levels map[string]*Level
	order  []string
}

// Level returns the level with the given id.
func (c *Catalog) Level(id string) (*Level, bool) {
	l, ok := c.levels[id]
	return l, ok
}

// Levels returns all levels in declaration order.
func (c *Catalog) Levels() []*Level {
	out := make([]*Level, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.levels[id])
	}
	return out
}
