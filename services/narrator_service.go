package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"jubensha/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// FallbackNarration is returned whenever the provider fails, so a dead or
// misconfigured model never blocks session flow.
const FallbackNarration = "The Game Master is silent..."

// recentMessageWindow is how much chat history the discussion template sees.
const recentMessageWindow = 5

// Provider generates prose from a system and a user prompt.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(0.7),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("provider returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// NarratorService routes a game phase to exactly one prompt template, runs it
// against the provider and returns the prose. Five phases narrate; every other
// phase resolves to no narration and no provider call.
type NarratorService struct {
	provider Provider
	stories  *StoryService
	games    *GameService
}

func NewNarratorService(provider Provider, stories *StoryService, games *GameService) *NarratorService {
	return &NarratorService{
		provider: provider,
		stories:  stories,
		games:    games,
	}
}

// Narrate produces Game-Master prose for the given phase. An empty string
// means the phase has no narration. Action is only used by the investigation
// template.
func (n *NarratorService) Narrate(ctx context.Context, gameID string, phase models.GamePhase, action string) string {
	systemPrompt, userPrompt, ok := n.buildPrompts(gameID, phase, action)
	if !ok {
		return ""
	}
	return n.generate(ctx, systemPrompt, userPrompt)
}

// generate runs the provider and degrades any failure into the fallback
// sentinel. Provider errors never propagate to the transport layer.
func (n *NarratorService) generate(ctx context.Context, systemPrompt, userPrompt string) string {
	out, err := n.provider.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("Narration provider error: %v", err)
		return FallbackNarration
	}
	if strings.TrimSpace(out) == "" {
		return FallbackNarration
	}
	return out
}

func (n *NarratorService) buildPrompts(gameID string, phase models.GamePhase, action string) (string, string, bool) {
	game, err := n.games.GetGame(gameID)
	if err != nil {
		log.Printf("Narration skipped, game %s: %v", gameID, err)
		return "", "", false
	}

	story, err := n.stories.Get(game.StoryID)
	if err != nil {
		log.Printf("Narration skipped, story %s: %v", game.StoryID, err)
		return "", "", false
	}

	foundIDs, err := n.games.FoundClueIDs(gameID)
	if err != nil {
		log.Printf("Narration skipped, found clues for %s: %v", gameID, err)
		return "", "", false
	}

	cctx := n.assembleContext(gameID, story, phase, foundIDs)

	switch phase {
	case models.PhaseScriptReading:
		systemPrompt, userPrompt := introductionPrompt(cctx, story.Phases.IntroNarration)
		return systemPrompt, userPrompt, true

	case models.PhaseInvestigation:
		foundSet := make(map[string]bool, len(foundIDs))
		for _, id := range foundIDs {
			foundSet[id] = true
		}
		var unfound []models.Clue
		for _, clue := range story.Clues {
			if !foundSet[clue.ID] {
				unfound = append(unfound, clue)
			}
		}
		systemPrompt, userPrompt := investigationPrompt(cctx, action, unfound)
		return systemPrompt, userPrompt, true

	case models.PhaseDiscussion:
		recent, err := n.games.RecentMessages(gameID, recentMessageWindow)
		if err != nil {
			log.Printf("Narration: recent messages for %s: %v", gameID, err)
		}
		systemPrompt, userPrompt := discussionPrompt(cctx, recent, story.Phases.DiscussionPrompts)
		return systemPrompt, userPrompt, true

	case models.PhaseVoting:
		systemPrompt, userPrompt := votingPrompt(cctx)
		return systemPrompt, userPrompt, true

	case models.PhaseReveal:
		systemPrompt, userPrompt := revealPrompt(cctx, story.Solution)
		return systemPrompt, userPrompt, true

	default:
		return "", "", false
	}
}

func (n *NarratorService) assembleContext(gameID string, story *models.Story, phase models.GamePhase, foundIDs []string) *narrativeContext {
	cctx := &narrativeContext{
		StoryTitle: story.Title,
		Setting:    story.Setting,
		Victim:     story.Victim,
		Phase:      phase,
	}

	if state, err := n.games.GetGameState(gameID); err == nil {
		for _, p := range state.Players {
			if p.CharacterName != "" {
				cctx.Roster = append(cctx.Roster, fmt.Sprintf("%s plays %s", p.Name, p.CharacterName))
			}
		}
	} else {
		log.Printf("Narration: game state for %s: %v", gameID, err)
	}

	for _, id := range foundIDs {
		if clue, err := n.stories.Clue(story.ID, id); err == nil {
			cctx.FoundClues = append(cctx.FoundClues, *clue)
		}
	}

	return cctx
}
