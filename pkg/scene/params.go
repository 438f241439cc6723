package scene

import (
	"reflect"
	"sort"
	"strings"
)

// legacySegments is the host-side name for the DSL's $fn parameter.
const legacySegments = "segments"

// Params is the parameter mapping of a node. Keys are names (keyword
// parameters) or non-negative slot indices (anonymous positional
// parameters). The zero value is an empty mapping ready for use.
type Params struct {
	named map[string]any
	slots map[int]any
}

// Set stores a named parameter.
func (p *Params) Set(name string, v any) {
	if p.named == nil {
		p.named = make(map[string]any)
	}
	p.named[name] = v
}

// SetSlot stores an anonymous positional parameter. Slot indices must be
// non-negative.
func (p *Params) SetSlot(i int, v any) {
	if i < 0 {
		panic("scene: negative parameter slot")
	}
	if p.slots == nil {
		p.slots = make(map[int]any)
	}
	p.slots[i] = v
}

// Get returns the named parameter and whether it is present.
func (p Params) Get(name string) (any, bool) {
	v, ok := p.named[name]
	return v, ok
}

// Slot returns the positional parameter at index i and whether it is present.
func (p Params) Slot(i int) (any, bool) {
	v, ok := p.slots[i]
	return v, ok
}

// Delete removes a named parameter.
func (p *Params) Delete(name string) {
	delete(p.named, name)
}

// Len returns the number of keys, including keys holding Unset.
func (p Params) Len() int {
	return len(p.named) + len(p.slots)
}

// Names returns the named keys in byte order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p.named))
	for k := range p.named {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Slots returns the positional slot indices in ascending order.
func (p Params) Slots() []int {
	slots := make([]int, 0, len(p.slots))
	for k := range p.slots {
		slots = append(slots, k)
	}
	sort.Ints(slots)
	return slots
}

// Clone returns an independent copy of the mapping.
func (p Params) Clone() Params {
	var c Params
	for k, v := range p.named {
		c.Set(k, cloneValue(v))
	}
	for k, v := range p.slots {
		c.SetSlot(k, cloneValue(v))
	}
	return c
}

func (p Params) equal(o Params) bool {
	if len(p.named) != len(o.named) || len(p.slots) != len(o.slots) {
		return false
	}
	for k, v := range p.named {
		ov, ok := o.named[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	for k, v := range p.slots {
		ov, ok := o.slots[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// String renders the parameter list as emitted between the parentheses of a
// DSL call: slots ascending, then names in byte order, Unset values skipped,
// "segments" renamed to "$fn" and host-adjusted names mapped back to their
// DSL spelling.
func (p Params) String() string {
	named := make(map[string]any, len(p.named))
	for k, v := range p.named {
		named[DSLName(k)] = v
	}
	if v, ok := named[legacySegments]; ok {
		delete(named, legacySegments)
		named["$fn"] = v
	}

	parts := make([]string, 0, len(named)+len(p.slots))
	for _, i := range p.Slots() {
		v := p.slots[i]
		if IsUnset(v) {
			continue
		}
		parts = append(parts, Format(v))
	}

	names := make([]string, 0, len(named))
	for k := range named {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := named[k]
		if IsUnset(v) {
			continue
		}
		parts = append(parts, k+" = "+Format(v))
	}
	return strings.Join(parts, ", ")
}

// values returns every stored value, slots first then names, in emission
// order.
func (p Params) values() []any {
	out := make([]any, 0, p.Len())
	for _, i := range p.Slots() {
		out = append(out, p.slots[i])
	}
	for _, k := range p.Names() {
		out = append(out, p.named[k])
	}
	return out
}
