package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed levels.yaml
var builtinLevels []byte

var validate = validator.New()

type document struct {
	Levels []Level `yaml:"levels" validate:"required,min=1,dive"`
}

// Default returns the built-in levels.
func Default() (*Catalog, error) {
	return Parse(builtinLevels)
}

// Parse decodes a YAML level document and builds a validated catalog from it.
func Parse(data []byte) (*Catalog, error) {
	levels, err := decode(data)
	if err != nil {
		return nil, err
	}
	return build(levels)
}

// LoadFiles loads level packs from a list of paths (files or directories) on
// top of the built-in levels. A level in a pack replaces any earlier level
// with the same id.
func LoadFiles(paths []string) (*Catalog, error) {
	levels, err := decode(builtinLevels)
	if err != nil {
		return nil, fmt.Errorf("built-in levels: %w", err)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		var files []string
		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
			}
			for _, entry := range entries {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if !entry.IsDir() && (ext == ".yaml" || ext == ".yml") {
					files = append(files, filepath.Join(path, entry.Name()))
				}
			}
		} else {
			files = append(files, path)
		}

		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("failed to read file %s: %w", file, err)
			}
			pack, err := decode(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			levels = merge(levels, pack)
		}
	}

	return build(levels)
}

func decode(data []byte) ([]Level, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal level yaml: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid level document: %w", err)
	}
	return doc.Levels, nil
}

func merge(base, pack []Level) []Level {
	for _, l := range pack {
		replaced := false
		for i := range base {
			if base[i].ID == l.ID {
				base[i] = l
				replaced = true
				break
			}
		}
		if !replaced {
			base = append(base, l)
		}
	}
	return base
}

func build(levels []Level) (*Catalog, error) {
	raw := make(map[string]Level, len(levels))
	c := &Catalog{levels: make(map[string]*Level, len(levels))}
	for _, l := range levels {
		if _, dup := raw[l.ID]; dup {
			return nil, fmt.Errorf("duplicate level id %q", l.ID)
		}
		raw[l.ID] = l
		c.order = append(c.order, l.ID)
	}

	for _, id := range c.order {
		resolved, err := resolve(id, raw, map[string]bool{})
		if err != nil {
			return nil, err
		}
		normalize(&resolved)
		if err := check(&resolved); err != nil {
			return nil, fmt.Errorf("level %s: %w", id, err)
		}
		c.levels[id] = &resolved
	}
	return c, nil
}

// resolve expands compositions depth first.
func resolve(id string, raw map[string]Level, visiting map[string]bool) (Level, error) {
	l, ok := raw[id]
	if !ok {
		return Level{}, fmt.Errorf("composed level %q not found", id)
	}
	if visiting[id] {
		return Level{}, fmt.Errorf("level %q composes itself", id)
	}
	if len(l.Compose) == 0 {
		return l, nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	var slots []Slot
	var items []ItemDef
	for _, comp := range l.Compose {
		part, err := resolve(comp.Level, raw, visiting)
		if err != nil {
			return Level{}, err
		}
		if comp.SkipSlots > len(part.Slots) {
			return Level{}, fmt.Errorf("level %s skips %d slots of level %s which has %d", id, comp.SkipSlots, comp.Level, len(part.Slots))
		}
		slots = append(slots, part.Slots[comp.SkipSlots:]...)
		items = append(items, part.Items...)
	}

	out := l
	out.Compose = nil
	out.Slots = append(slots, l.Slots...)
	out.Items = append(items, l.Items...)
	return out, nil
}

func normalize(l *Level) {
	slots := make([]Slot, len(l.Slots))
	copy(slots, l.Slots)
	for i := range slots {
		if slots[i].Role == "" {
			slots[i].Role = RoleInteractive
		}
	}
	l.Slots = slots

	items := make([]ItemDef, len(l.Items))
	copy(items, l.Items)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = items[i].Label
		}
	}
	l.Items = items
}

func check(l *Level) error {
	if len(l.Slots) == 0 {
		return fmt.Errorf("no slots")
	}
	seen := make(map[string]bool, len(l.Slots))
	addresses := make(map[SubSlotID]string)
	for _, s := range l.Slots {
		if seen[s.ID] {
			return fmt.Errorf("duplicate slot id %q", s.ID)
		}
		seen[s.ID] = true

		if s.HasOperator && s.AcceptedOperator == "" {
			return fmt.Errorf("slot %q has an operator half but no accepted operator", s.ID)
		}
		for _, k := range []Kind{KindOp, KindMain} {
			if !s.Owns(k) {
				continue
			}
			addr := s.Address(k)
			if owner, taken := addresses[addr]; taken {
				return fmt.Errorf("slot %q address %q collides with slot %q", s.ID, addr, owner)
			}
			addresses[addr] = s.ID
		}
	}
	for addr, owner := range addresses {
		if string(addr) != owner && seen[string(addr)] {
			return fmt.Errorf("slot %q address %q collides with a slot id", owner, addr)
		}
	}
	return nil
}
