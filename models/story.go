package models

// Story reference data is loaded from JSON files on disk at startup and is
// read-only for the lifetime of the process. These structs are not persisted.

type Story struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	TitleCN         string          `json:"title_cn,omitempty"`
	Description     string          `json:"description"`
	PlayerCount     PlayerCount     `json:"player_count"`
	Difficulty      string          `json:"difficulty"`
	DurationMinutes int             `json:"duration_minutes"`
	Setting         Setting         `json:"setting"`
	Victim          Victim          `json:"victim"`
	Timeline        []TimelineEvent `json:"timeline,omitempty"`
	Characters      []Character     `json:"characters"`
	Locations       []Location      `json:"locations"`
	Clues           []Clue          `json:"clues"`
	Phases          StoryPhases     `json:"phases"`
	Solution        Solution        `json:"solution"`
}

type PlayerCount struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Setting struct {
	Location   string `json:"location"`
	Atmosphere string `json:"atmosphere"`
}

type Victim struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TimelineEvent is one entry of the public pre-murder chronology players use
// to cross-check alibis.
type TimelineEvent struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

// Character carries both the public blurb shown during selection and the
// private material only the assigned player may read.
type Character struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	NameCN            string            `json:"name_cn,omitempty"`
	PublicInfo        string            `json:"public_info"`
	PrivateBackground string            `json:"private_background"`
	Secrets           []string          `json:"secrets"`
	Relationships     map[string]string `json:"relationships"`
	Goals             []string          `json:"goals"`
}

// CharacterPublic is the selection-screen view of a character.
type CharacterPublic struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NameCN     string `json:"name_cn,omitempty"`
	PublicInfo string `json:"public_info"`
	IsTaken    bool   `json:"is_taken"`
}

type Location struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	NameCN          string   `json:"name_cn,omitempty"`
	Description     string   `json:"description"`
	SearchableItems []string `json:"searchable_items"`
}

// Clue is bound to a location. DiscoveryHint is matched against a player's
// search item; Name and Description are what the discovery broadcast carries.
type Clue struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	DiscoveryHint string `json:"discovery_hint"`
}

type StoryPhases struct {
	IntroNarration    string   `json:"intro_narration"`
	DiscussionPrompts []string `json:"discussion_prompts"`
}

// Solution must never reach clients before the reveal phase.
type Solution struct {
	CulpritID       string `json:"culprit_id"`
	Method          string `json:"method"`
	Motive          string `json:"motive"`
	FullExplanation string `json:"full_explanation"`
}

// StorySummary is the listing view of a story, without characters, clues or
// the solution.
type StorySummary struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	TitleCN         string      `json:"title_cn,omitempty"`
	Description     string      `json:"description"`
	PlayerCount     PlayerCount `json:"player_count"`
	Difficulty      string      `json:"difficulty"`
	DurationMinutes int         `json:"duration_minutes"`
}
