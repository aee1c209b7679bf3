// Package bone applies fixed rotation offsets to individual skeleton joints
// before their transforms are composed.
package bone

import (
	"sort"

	"github.com/Faultbox/incubatio/pkg/math"
)

// Adjust returns base * QuatFromRotator(extra) when current is the target bone,
// and base unchanged otherwise.
func Adjust(base math.Quat, target, current int, extra math.Rotator) math.Quat {
	if current != target {
		return base
	}
	return base.Mul(math.QuatFromRotator(extra))
}

// Table maps a joint index to the rotation offset it receives.
type Table map[int]math.Rotator

// ParseTable converts (pitch, yaw, roll) degree triples keyed by joint index,
// the form they take in config files.
func ParseTable(raw map[int][3]float32) Table {
	t := make(Table, len(raw))
	for idx, e := range raw {
		t[idx] = RotatorFromTriple(e)
	}
	return t
}

// RotatorFromTriple reads a config triple as (pitch, yaw, roll) degrees.
func RotatorFromTriple(v [3]float32) math.Rotator {
	return math.Rotator{Pitch: v[0], Yaw: v[1], Roll: v[2]}
}

// Indices returns the configured joint indices in ascending order.
func (t Table) Indices() []int {
	out := make([]int, 0, len(t))
	for idx := range t {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Override forces one bone's offset regardless of the table.
type Override struct {
	Bone   int
	Offset math.Rotator
}

// Adjuster applies a Table plus an optional single-bone Override.
// The zero value applies nothing.
type Adjuster struct {
	table    Table
	override *Override

	// cached quaternions per table entry
	quats map[int]math.Quat
}

// NewAdjuster returns an adjuster for table. A nil table is a no-op.
func NewAdjuster(table Table) *Adjuster {
	a := &Adjuster{
		table: table,
		quats: make(map[int]math.Quat, len(table)),
	}
	for idx, e := range table {
		a.quats[idx] = math.QuatFromRotator(e)
	}
	return a
}

// SetOverride makes bone use offset in place of its table entry.
func (a *Adjuster) SetOverride(bone int, offset math.Rotator) {
	a.override = &Override{Bone: bone, Offset: offset}
}

// ClearOverride removes the single-bone override.
func (a *Adjuster) ClearOverride() {
	a.override = nil
}

// Apply returns base with the offset for joint index composed on its right.
// The override, when set for index, replaces the table entry.
func (a *Adjuster) Apply(base math.Quat, index int) math.Quat {
	if a == nil {
		return base
	}
	if o := a.override; o != nil && o.Bone == index {
		return Adjust(base, o.Bone, index, o.Offset)
	}
	if q, ok := a.quats[index]; ok {
		return base.Mul(q)
	}
	return base
}

// ApplyAll adjusts every rotation by its position in the slice. The input is
// not modified.
func (a *Adjuster) ApplyAll(rotations []math.Quat) []math.Quat {
	out := make([]math.Quat, len(rotations))
	for i, q := range rotations {
		out[i] = a.Apply(q, i)
	}
	return out
}

// Empty reports whether the adjuster changes nothing.
func (a *Adjuster) Empty() bool {
	return a == nil || (len(a.table) == 0 && a.override == nil)
}
