package models

import "testing"

func TestPhaseNextFollowsLinearOrder(t *testing.T) {
	phase := PhaseLobby
	for i := 1; i < len(PhaseOrder); i++ {
		next, ok := phase.Next()
		if !ok {
			t.Fatalf("Next() from %s returned ok=false before the end of the progression", phase)
		}
		if next != PhaseOrder[i] {
			t.Fatalf("Next() from %s = %s, want %s", phase, next, PhaseOrder[i])
		}
		if next.Index() <= phase.Index() {
			t.Fatalf("phase index went backwards: %s (%d) -> %s (%d)", phase, phase.Index(), next, next.Index())
		}
		phase = next
	}
}

func TestPhaseNextTerminal(t *testing.T) {
	if _, ok := PhaseEnded.Next(); ok {
		t.Fatal("Next() from ended should not advance")
	}
}

func TestPhaseNextUnknown(t *testing.T) {
	if _, ok := GamePhase("intermission").Next(); ok {
		t.Fatal("Next() from an unknown phase should not advance")
	}
	if idx := GamePhase("intermission").Index(); idx != -1 {
		t.Fatalf("Index() of unknown phase = %d, want -1", idx)
	}
}

func TestPhaseOrderEndpoints(t *testing.T) {
	if PhaseOrder[0] != PhaseLobby {
		t.Fatalf("progression starts at %s, want lobby", PhaseOrder[0])
	}
	if PhaseOrder[len(PhaseOrder)-1] != PhaseEnded {
		t.Fatalf("progression ends at %s, want ended", PhaseOrder[len(PhaseOrder)-1])
	}
}
