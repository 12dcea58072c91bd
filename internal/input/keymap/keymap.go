package keymap

import (
	"sort"
	"sync"
)

// Keymap is a collection of bindings.
// All methods are safe for concurrent use.
type Keymap struct {
	mu       sync.RWMutex
	name     string
	bindings map[string][]entry
	seq      int
}

type entry struct {
	binding Binding
	order   int
}

// New creates an empty keymap.
func New(name string) *Keymap {
	return &Keymap{
		name:     name,
		bindings: make(map[string][]entry),
	}
}

// Name returns the keymap name.
func (k *Keymap) Name() string {
	return k.name
}

// Add adds a binding. Its key is normalized with NormalizeKey.
func (k *Keymap) Add(b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.Keys = NormalizeKey(b.Keys)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.seq++
	k.bindings[b.Keys] = append(k.bindings[b.Keys], entry{binding: b, order: k.seq})
	return nil
}

// AddAll adds bindings, stopping at the first invalid one.
func (k *Keymap) AddAll(bindings ...Binding) error {
	for _, b := range bindings {
		if err := k.Add(b); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAction removes every binding of an action.
func (k *Keymap) RemoveAction(action string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, entries := range k.bindings {
		kept := entries[:0]
		for _, e := range entries {
			if e.binding.Action != action {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(k.bindings, key)
		} else {
			k.bindings[key] = kept
		}
	}
}

// Lookup returns the active binding for key with the highest priority.
// Among equal priorities the most recently added binding wins.
func (k *Keymap) Lookup(key string) (Binding, bool) {
	key = NormalizeKey(key)

	k.mu.RLock()
	entries := append([]entry(nil), k.bindings[key]...)
	k.mu.RUnlock()

	var best *entry
	for i := range entries {
		e := &entries[i]
		if !e.binding.Active() {
			continue
		}
		if best == nil ||
			e.binding.Priority > best.binding.Priority ||
			(e.binding.Priority == best.binding.Priority && e.order > best.order) {
			best = e
		}
	}
	if best == nil {
		return Binding{}, false
	}
	return best.binding, true
}

// Bindings returns all bindings sorted by key, then action.
func (k *Keymap) Bindings() []Binding {
	k.mu.RLock()
	defer k.mu.RUnlock()

	var out []Binding
	for _, entries := range k.bindings {
		for _, e := range entries {
			out = append(out, e.binding)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Keys != out[j].Keys {
			return out[i].Keys < out[j].Keys
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// KeysFor returns the keys bound to an action, sorted.
func (k *Keymap) KeysFor(action string) []string {
	var keys []string
	for _, b := range k.Bindings() {
		if b.Action == action {
			keys = append(keys, b.Keys)
		}
	}
	return keys
}
