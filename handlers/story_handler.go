package handlers

import (
	"net/http"

	"jubensha/services"

	"github.com/gin-gonic/gin"
)

type StoryHandler struct {
	storyService *services.StoryService
}

func NewStoryHandler(storyService *services.StoryService) *StoryHandler {
	return &StoryHandler{storyService: storyService}
}

func (h *StoryHandler) ListStories(c *gin.Context) {
	c.JSON(http.StatusOK, h.storyService.List())
}

// GetStory returns story details without the solution or private character
// fields.
func (h *StoryHandler) GetStory(c *gin.Context) {
	story, err := h.storyService.Get(c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":               story.ID,
		"title":            story.Title,
		"title_cn":         story.TitleCN,
		"description":      story.Description,
		"player_count":     story.PlayerCount,
		"difficulty":       story.Difficulty,
		"duration_minutes": story.DurationMinutes,
		"setting":          story.Setting,
		"victim":           story.Victim,
		"timeline":         story.Timeline,
		"locations":        story.Locations,
	})
}

func (h *StoryHandler) GetLocations(c *gin.Context) {
	locations, err := h.storyService.Locations(c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, locations)
}

func (h *StoryHandler) ReloadStories(c *gin.Context) {
	if err := h.storyService.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stories := h.storyService.List()
	c.JSON(http.StatusOK, gin.H{
		"message": "Stories reloaded",
		"stories": stories,
	})
}
