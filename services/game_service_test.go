package services

import (
	"testing"

	"jubensha/models"
)

func libraryClues() []models.Clue {
	return []models.Clue{
		{ID: "clue_ledger", Name: "Second Ledger", Location: "loc_library", DiscoveryHint: "Check the desk drawers"},
		{ID: "clue_will", Name: "Unsigned Will", Location: "loc_library", DiscoveryHint: "Search behind the shelves"},
	}
}

func TestPickClueFirstMatchWins(t *testing.T) {
	clue := pickClue(libraryClues(), "", map[string]bool{})
	if clue == nil || clue.ID != "clue_ledger" {
		t.Fatalf("pickClue() = %v, want clue_ledger", clue)
	}
}

func TestPickClueSkipsAlreadyFound(t *testing.T) {
	clue := pickClue(libraryClues(), "", map[string]bool{"clue_ledger": true})
	if clue == nil || clue.ID != "clue_will" {
		t.Fatalf("pickClue() = %v, want clue_will", clue)
	}
}

func TestPickClueExhausted(t *testing.T) {
	found := map[string]bool{"clue_ledger": true, "clue_will": true}
	if clue := pickClue(libraryClues(), "", found); clue != nil {
		t.Fatalf("pickClue() = %v, want nil once every clue is found", clue)
	}
}

func TestPickClueItemFilter(t *testing.T) {
	tests := []struct {
		name   string
		item   string
		found  map[string]bool
		wantID string
	}{
		{"filter matches second clue", "shelves", map[string]bool{}, "clue_will"},
		{"filter is case-insensitive", "DESK", map[string]bool{}, "clue_ledger"},
		{"filter matches nothing", "attic", map[string]bool{}, ""},
		{"filter applies before the found check", "desk", map[string]bool{"clue_ledger": true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clue := pickClue(libraryClues(), tt.item, tt.found)
			if tt.wantID == "" {
				if clue != nil {
					t.Fatalf("pickClue(%q) = %s, want nil", tt.item, clue.ID)
				}
				return
			}
			if clue == nil || clue.ID != tt.wantID {
				t.Fatalf("pickClue(%q) = %v, want %s", tt.item, clue, tt.wantID)
			}
		})
	}
}

func TestPickClueOnePerAction(t *testing.T) {
	// Two unfound clues match, but a single action discovers only the first.
	found := map[string]bool{}
	first := pickClue(libraryClues(), "", found)
	if first == nil {
		t.Fatal("expected a discovery")
	}
	found[first.ID] = true

	second := pickClue(libraryClues(), "", found)
	if second == nil || second.ID == first.ID {
		t.Fatalf("second action rediscovered %v", second)
	}
}
