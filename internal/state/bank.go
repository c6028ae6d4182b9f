package state

import (
	"math/rand"

	"akaun-master/internal/catalog"
)

// Shuffler produces a permutation by calling swap; *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// Bank holds the items that are not placed in any slot.
type Bank struct {
	items   []Item
	rng     Shuffler
	spawned int
}

// NewBank creates an empty bank. A nil shuffler uses math/rand.
func NewBank(rng Shuffler) *Bank {
	if rng == nil {
		rng = globalShuffler{}
	}
	return &Bank{rng: rng}
}

// Initialize replaces the bank with one fresh item per definition, shuffled.
func (b *Bank) Initialize(defs []catalog.ItemDef) {
	b.items = make([]Item, 0, len(defs))
	for _, def := range defs {
		b.items = append(b.items, spawn(def))
	}
	b.spawned += len(defs)
	b.shuffle()
}

// Get finds an item by id without removing it.
func (b *Bank) Get(id string) (Item, bool) {
	for _, it := range b.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Remove takes exactly one item out of the bank. Siblings sharing its
// definition stay where they are.
func (b *Bank) Remove(id string) (Item, bool) {
	for i, it := range b.items {
		if it.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return it, true
		}
	}
	return Item{}, false
}

// AddPenaltyCopies returns original to the bank together with n fresh copies
// of it, then reshuffles. The copies are returned.
func (b *Bank) AddPenaltyCopies(original Item, n int) []Item {
	copies := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		copies = append(copies, original.duplicate())
	}
	b.items = append(b.items, original)
	b.items = append(b.items, copies...)
	b.spawned += n
	b.shuffle()
	return copies
}

// CountMatching counts the items satisfying pred.
func (b *Bank) CountMatching(pred func(Item) bool) int {
	n := 0
	for _, it := range b.items {
		if pred(it) {
			n++
		}
	}
	return n
}

// Items returns the bank contents in display order.
func (b *Bank) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Bank) Len() int { return len(b.items) }

// Spawned is the number of items ever minted into this bank.
func (b *Bank) Spawned() int { return b.spawned }

func (b *Bank) shuffle() {
	b.rng.Shuffle(len(b.items), func(i, j int) {
		b.items[i], b.items[j] = b.items[j], b.items[i]
	})
}
