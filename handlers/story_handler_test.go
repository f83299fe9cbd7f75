package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jubensha/services"

	"github.com/gin-gonic/gin"
)

const storyFixture = `{
  "id": "test_story",
  "title": "The Locked Study",
  "description": "A fixture scenario.",
  "player_count": { "min": 2, "max": 4 },
  "difficulty": "easy",
  "duration_minutes": 60,
  "setting": { "location": "A townhouse", "atmosphere": "Rain on the windows" },
  "victim": { "name": "Professor Hale", "description": "Found at his desk." },
  "timeline": [
    { "time": "20:00", "event": "The professor locks himself in the study." },
    { "time": "22:15", "event": "A single gunshot is heard." }
  ],
  "characters": [
    {
      "id": "char_assistant",
      "name": "The Assistant",
      "public_info": "Kept the professor's appointments.",
      "private_background": "She copied the manuscript.",
      "secrets": ["She sold the first draft"],
      "relationships": {},
      "goals": ["Recover the receipt"]
    }
  ],
  "locations": [
    {
      "id": "loc_study",
      "name": "Study",
      "description": "Books everywhere.",
      "searchable_items": ["desk"]
    }
  ],
  "clues": [],
  "phases": { "intro_narration": "Rain fell all evening.", "discussion_prompts": [] },
  "solution": {
    "culprit_id": "char_assistant",
    "method": "A rigged pistol.",
    "motive": "The manuscript receipt.",
    "full_explanation": "The assistant rigged the pistol before dinner."
  }
}`

func newStoryRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "test_story.json"), []byte(storyFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	svc := services.NewStoryService(dir)
	if err := svc.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewStoryHandler(svc)
	router.GET("/api/stories/:id", h.GetStory)
	return router
}

func TestGetStoryCarriesTimeline(t *testing.T) {
	router := newStoryRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stories/test_story", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Timeline []struct {
			Time  string `json:"time"`
			Event string `json:"event"`
		} `json:"timeline"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(body.Timeline) != 2 {
		t.Fatalf("timeline has %d events, want 2", len(body.Timeline))
	}
	if body.Timeline[1].Time != "22:15" || !strings.Contains(body.Timeline[1].Event, "gunshot") {
		t.Fatalf("unexpected timeline entry: %+v", body.Timeline[1])
	}
}

// The detail view must never carry the solution or private character material.
func TestGetStoryOmitsSolution(t *testing.T) {
	router := newStoryRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stories/test_story", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	payload := w.Body.String()
	for _, leak := range []string{"solution", "rigged the pistol", "private_background", "She sold the first draft"} {
		if strings.Contains(payload, leak) {
			t.Errorf("story detail leaks %q", leak)
		}
	}
}

func TestGetStoryUnknown(t *testing.T) {
	router := newStoryRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stories/no_such_story", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
