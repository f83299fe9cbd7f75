package services

import (
	"errors"
	"testing"
)

func loadTestCatalog(t *testing.T) *StoryService {
	t.Helper()

	svc := NewStoryService("testdata")
	if err := svc.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := svc.Get("foggy_manor"); err != nil {
		t.Fatalf("fixture story not loaded: %v", err)
	}
	return svc
}

func TestStoryServiceGetUnknown(t *testing.T) {
	svc := loadTestCatalog(t)

	_, err := svc.Get("no_such_story")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStoryServiceList(t *testing.T) {
	svc := loadTestCatalog(t)

	summaries := svc.List()
	if len(summaries) != 1 {
		t.Fatalf("List() returned %d stories, want 1", len(summaries))
	}
	if summaries[0].ID != "foggy_manor" || summaries[0].PlayerCount.Min != 2 {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}

func TestStoryServiceCharactersHidePrivateFields(t *testing.T) {
	svc := loadTestCatalog(t)

	chars, err := svc.Characters("foggy_manor")
	if err != nil {
		t.Fatalf("Characters() error: %v", err)
	}
	if len(chars) != 2 {
		t.Fatalf("Characters() returned %d, want 2", len(chars))
	}
	for _, c := range chars {
		if c.PublicInfo == "" {
			t.Errorf("character %s missing public info", c.ID)
		}
	}

	// The private view is only reachable through Character.
	char, err := svc.Character("foggy_manor", "char_butler")
	if err != nil {
		t.Fatalf("Character() error: %v", err)
	}
	if char.PrivateBackground == "" || len(char.Secrets) == 0 {
		t.Fatalf("private character view incomplete: %+v", char)
	}
}

func TestStoryServiceCluesAtLocationPreservesOrder(t *testing.T) {
	svc := loadTestCatalog(t)

	clues, err := svc.CluesAtLocation("foggy_manor", "loc_library")
	if err != nil {
		t.Fatalf("CluesAtLocation() error: %v", err)
	}
	if len(clues) != 2 {
		t.Fatalf("CluesAtLocation() returned %d clues, want 2", len(clues))
	}
	// Story-declared order drives search resolution and must be stable.
	if clues[0].ID != "clue_ledger" || clues[1].ID != "clue_will" {
		t.Fatalf("clue order not preserved: %s, %s", clues[0].ID, clues[1].ID)
	}
}

func TestStoryServiceClueUnknown(t *testing.T) {
	svc := loadTestCatalog(t)

	if _, err := svc.Clue("foggy_manor", "clue_ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Clue(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStoryServiceSolution(t *testing.T) {
	svc := loadTestCatalog(t)

	sol, err := svc.Solution("foggy_manor")
	if err != nil {
		t.Fatalf("Solution() error: %v", err)
	}
	if sol.CulpritID != "char_butler" {
		t.Fatalf("Solution().CulpritID = %s, want char_butler", sol.CulpritID)
	}
}
