package services

import (
	"fmt"
	"strings"

	"jubensha/models"
)

// baseSystemPrompt frames every Game-Master generation regardless of phase.
const baseSystemPrompt = `You are the Game Master (主持人) for a murder mystery game (剧本杀).
Your role is to guide players through the mystery, reveal information appropriately,
and create an immersive, suspenseful atmosphere.

RULES:
- Never reveal the solution or who the culprit is until the reveal phase
- Be dramatic and atmospheric in your narration
- Respond in the same language the players use
- Keep responses concise but engaging (2-4 paragraphs max)
- Use Chinese (中文) if players speak Chinese`

const introductionTask = `
CURRENT TASK: Introduction Phase (阅读剧本)
- Dramatically introduce the setting and victim
- Set the scene for the mystery
- Build tension and atmosphere`

const investigationTask = `
CURRENT TASK: Investigation Phase (搜证阶段)
- Guide players in their search
- Give hints about where to look without revealing too much
- React to clue discoveries with appropriate dramatic flair
- Encourage players to discuss findings`

const discussionTask = `
CURRENT TASK: Discussion Phase (集中讨论)
- Facilitate discussion between players
- Ask probing questions to spark debate
- Summarize key points when helpful
- Build tension as the vote approaches`

const votingTask = `
CURRENT TASK: Voting Phase (投票阶段)
- Remind players of the gravity of their decision
- Create dramatic tension
- Do NOT reveal any hints about who the culprit is`

const revealTask = `
CURRENT TASK: Truth Reveal Phase (真相揭晓)
- Dramatically reveal what really happened
- Build up the reveal with tension
- Congratulate correct guesses or console wrong ones`

// narrativeContext is the phase-independent material shared by every template.
// It never carries the solution; only the reveal prompt builder receives that.
type narrativeContext struct {
	StoryTitle string
	Setting    models.Setting
	Victim     models.Victim
	Phase      models.GamePhase
	Roster     []string
	FoundClues []models.Clue
}

func (c *narrativeContext) render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "STORY: %s\n", c.StoryTitle)
	fmt.Fprintf(&b, "SETTING: %s - %s\n", c.Setting.Location, c.Setting.Atmosphere)
	fmt.Fprintf(&b, "VICTIM: %s - %s\n", c.Victim.Name, c.Victim.Description)
	fmt.Fprintf(&b, "\nCURRENT PHASE: %s\n", c.Phase)

	b.WriteString("\nPLAYERS:\n")
	if len(c.Roster) == 0 {
		b.WriteString("No players yet\n")
	}
	for _, line := range c.Roster {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	b.WriteString("\nCLUES DISCOVERED:\n")
	if len(c.FoundClues) == 0 {
		b.WriteString("No clues found yet\n")
	}
	for _, clue := range c.FoundClues {
		fmt.Fprintf(&b, "- %s: %s\n", clue.Name, clue.Description)
	}

	return b.String()
}

func introductionPrompt(cctx *narrativeContext, intro string) (string, string) {
	user := fmt.Sprintf(`CONTEXT:
%s
PREPARED INTRODUCTION:
%s

Now, as the Game Master, deliver a dramatic opening narration based on the above.
Expand on the prepared introduction with atmospheric details.
Make players feel the tension and mystery.`, cctx.render(), intro)

	return baseSystemPrompt + introductionTask, user
}

func investigationPrompt(cctx *narrativeContext, action string, unfound []models.Clue) (string, string) {
	hints := make([]string, 0, len(unfound))
	for _, clue := range unfound {
		hints = append(hints, fmt.Sprintf("- %s at %s", clue.Name, clue.Location))
	}

	user := fmt.Sprintf(`CONTEXT:
%s
PLAYER ACTION: %s

UNFOUND CLUES (for your reference, do NOT reveal directly):
%s

Respond to the player's action or question. If they're stuck, give subtle hints.`,
		cctx.render(), action, strings.Join(hints, "\n"))

	return baseSystemPrompt + investigationTask, user
}

func discussionPrompt(cctx *narrativeContext, recent []models.Message, suggested []string) (string, string) {
	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.SenderName, msg.Content))
	}

	user := fmt.Sprintf(`CONTEXT:
%s
RECENT MESSAGES:
%s

SUGGESTED DISCUSSION QUESTIONS:
%s

Facilitate the discussion. Ask a probing question or summarize a key point.
Build tension toward the upcoming vote.`,
		cctx.render(), strings.Join(lines, "\n"), strings.Join(suggested, "\n"))

	return baseSystemPrompt + discussionTask, user
}

func votingPrompt(cctx *narrativeContext) (string, string) {
	user := fmt.Sprintf(`CONTEXT:
%s
Dramatically announce that voting is about to begin.
Remind players of what's at stake.
Do NOT give any hints about who the culprit is.`, cctx.render())

	return baseSystemPrompt + votingTask, user
}

// revealPrompt is the only builder that receives the solution.
func revealPrompt(cctx *narrativeContext, solution models.Solution) (string, string) {
	user := fmt.Sprintf(`CONTEXT:
%s
SOLUTION DETAILS:
- Culprit: %s
- Method: %s
- Motive: %s
- Full Story: %s

Dramatically reveal what really happened. Build suspense before the big reveal.
Describe the culprit's actions step by step.`,
		cctx.render(), solution.CulpritID, solution.Method, solution.Motive, solution.FullExplanation)

	return baseSystemPrompt + revealTask, user
}
