package models

// GamePhase is the fixed stage progression of a game session.
type GamePhase string

const (
	PhaseLobby           GamePhase = "lobby"
	PhaseCharacterSelect GamePhase = "character_select"
	PhaseScriptReading   GamePhase = "script_reading"
	PhaseInvestigation   GamePhase = "investigation"
	PhaseDiscussion      GamePhase = "discussion"
	PhaseVoting          GamePhase = "voting"
	PhaseReveal          GamePhase = "reveal"
	PhaseEnded           GamePhase = "ended"
)

// PhaseOrder is the strict linear progression. Phases only ever advance to
// the next entry; there is no skipping and no going back.
var PhaseOrder = []GamePhase{
	PhaseLobby,
	PhaseCharacterSelect,
	PhaseScriptReading,
	PhaseInvestigation,
	PhaseDiscussion,
	PhaseVoting,
	PhaseReveal,
	PhaseEnded,
}

// Index returns the position of the phase in the progression, or -1 for an
// unknown phase value.
func (p GamePhase) Index() int {
	for i, phase := range PhaseOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

// Next returns the following phase. The second return value is false when
// the phase is terminal or unknown.
func (p GamePhase) Next() (GamePhase, bool) {
	idx := p.Index()
	if idx < 0 || idx >= len(PhaseOrder)-1 {
		return p, false
	}
	return PhaseOrder[idx+1], true
}
