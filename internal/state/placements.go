package state

import "akaun-master/internal/catalog"

// Placements maps sub-slots to the single item occupying each of them.
// Occupancy is checked by the resolver, not here.
type Placements struct {
	slots map[catalog.SubSlotID]Item
}

func NewPlacements() *Placements {
	return &Placements{slots: make(map[catalog.SubSlotID]Item)}
}

func (p *Placements) Get(id catalog.SubSlotID) (Item, bool) {
	it, ok := p.slots[id]
	return it, ok
}

func (p *Placements) Set(id catalog.SubSlotID, it Item) {
	p.slots[id] = it
}

func (p *Placements) Clear(id catalog.SubSlotID) {
	delete(p.slots, id)
}

// ClearAndReturn empties the sub-slot and hands back what was in it.
func (p *Placements) ClearAndReturn(id catalog.SubSlotID) (Item, bool) {
	it, ok := p.slots[id]
	if ok {
		delete(p.slots, id)
	}
	return it, ok
}

func (p *Placements) Len() int { return len(p.slots) }
