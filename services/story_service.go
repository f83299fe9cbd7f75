package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"jubensha/models"
)

// StoryService is the read-only story catalog. Stories are loaded from JSON
// files once at startup, before the coordinator accepts connections.
type StoryService struct {
	dir     string
	mu      sync.RWMutex
	stories map[string]*models.Story
}

func NewStoryService(dir string) *StoryService {
	return &StoryService{
		dir:     dir,
		stories: make(map[string]*models.Story),
	}
}

// Load reads every *.json file in the stories directory. A file that fails to
// parse is skipped with a log line; it does not abort the rest of the load.
func (s *StoryService) Load() error {
	entries, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to scan stories directory: %w", err)
	}

	loaded := make(map[string]*models.Story)
	for _, path := range entries {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Error reading story %s: %v", path, err)
			continue
		}

		var story models.Story
		if err := json.Unmarshal(data, &story); err != nil {
			log.Printf("Error parsing story %s: %v", path, err)
			continue
		}
		if story.ID == "" {
			log.Printf("Skipping story %s: missing id", path)
			continue
		}

		loaded[story.ID] = &story
		log.Printf("Loaded story: %s", story.Title)
	}

	s.mu.Lock()
	s.stories = loaded
	s.mu.Unlock()

	log.Printf("Loaded %d stories from %s", len(loaded), s.dir)
	return nil
}

// Reload re-reads the stories directory from disk.
func (s *StoryService) Reload() error {
	return s.Load()
}

// List returns summary info for every loaded story.
func (s *StoryService) List() []models.StorySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]models.StorySummary, 0, len(s.stories))
	for _, story := range s.stories {
		summaries = append(summaries, models.StorySummary{
			ID:              story.ID,
			Title:           story.Title,
			TitleCN:         story.TitleCN,
			Description:     story.Description,
			PlayerCount:     story.PlayerCount,
			Difficulty:      story.Difficulty,
			DurationMinutes: story.DurationMinutes,
		})
	}
	return summaries
}

// Get returns the full story, solution included. Callers that talk to clients
// must strip the solution and private character fields themselves.
func (s *StoryService) Get(storyID string) (*models.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	story, ok := s.stories[storyID]
	if !ok {
		return nil, fmt.Errorf("story %s: %w", storyID, ErrNotFound)
	}
	return story, nil
}

// Characters returns the public view of every character in a story.
func (s *StoryService) Characters(storyID string) ([]models.CharacterPublic, error) {
	story, err := s.Get(storyID)
	if err != nil {
		return nil, err
	}

	public := make([]models.CharacterPublic, 0, len(story.Characters))
	for _, char := range story.Characters {
		public = append(public, models.CharacterPublic{
			ID:         char.ID,
			Name:       char.Name,
			NameCN:     char.NameCN,
			PublicInfo: char.PublicInfo,
		})
	}
	return public, nil
}

// Character returns full character info including private details.
func (s *StoryService) Character(storyID, characterID string) (*models.Character, error) {
	story, err := s.Get(storyID)
	if err != nil {
		return nil, err
	}

	for i := range story.Characters {
		if story.Characters[i].ID == characterID {
			return &story.Characters[i], nil
		}
	}
	return nil, fmt.Errorf("character %s: %w", characterID, ErrNotFound)
}

func (s *StoryService) Locations(storyID string) ([]models.Location, error) {
	story, err := s.Get(storyID)
	if err != nil {
		return nil, err
	}
	return story.Locations, nil
}

func (s *StoryService) Clue(storyID, clueID string) (*models.Clue, error) {
	story, err := s.Get(storyID)
	if err != nil {
		return nil, err
	}

	for i := range story.Clues {
		if story.Clues[i].ID == clueID {
			return &story.Clues[i], nil
		}
	}
	return nil, fmt.Errorf("clue %s: %w", clueID, ErrNotFound)
}

// CluesAtLocation returns the clues bound to a location in story-declared
// order. Search resolution depends on this order being stable.
func (s *StoryService) CluesAtLocation(storyID, locationID string) ([]models.Clue, error) {
	story, err := s.Get(storyID)
	if err != nil {
		return nil, err
	}

	var clues []models.Clue
	for _, clue := range story.Clues {
		if clue.Location == locationID {
			clues = append(clues, clue)
		}
	}
	return clues, nil
}

func (s *StoryService) Solution(storyID string) (*models.Solution, error) {
	story, err := s.Get(storyID)
	if err != nil {
		return nil, err
	}
	return &story.Solution, nil
}
