package pipeline

// VisibilityState is the input to the companion-mesh visibility decision:
// which auxiliary slots have ever been successfully populated, and
// whether an STL surface is the active primary content.
type VisibilityState struct {
	HasGenerated bool
	HasDefault   bool
	STLActive    bool
}

// VisibilityChange is one actor visibility assignment.
type VisibilityChange struct {
	Slot    SlotKind
	Visible bool
}

// DecideMeshVisibility is the visibility arbiter: given the current slot
// state and the requested "show companion mesh" value, it returns the
// visibility assignments to apply. It is a pure total function and
// idempotent — the same inputs always yield the same assignments.
//
// Precedence:
//  1. STL active: the toggle is a no-op, STL has no companion mesh.
//  2. A generated mesh exists: it receives the request; showing it
//     forces the default fallback hidden (generated always wins).
//  3. Only the default fallback exists: it receives the request.
//  4. Nothing loaded: no effect.
func DecideMeshVisibility(s VisibilityState, show bool) []VisibilityChange {
	switch {
	case s.STLActive:
		return nil
	case s.HasGenerated:
		changes := []VisibilityChange{{Slot: SlotGenerated, Visible: show}}
		if show && s.HasDefault {
			changes = append(changes, VisibilityChange{Slot: SlotDefault, Visible: false})
		}
		return changes
	case s.HasDefault:
		return []VisibilityChange{{Slot: SlotDefault, Visible: show}}
	default:
		return nil
	}
}
