package geobluffdto

// NewGameRequest configures a new session. Zero values pick the defaults.
type NewGameRequest struct {
	HandSize    int    `json:"hand_size"`
	CategorySet string `json:"category_set"`
	Language    string `json:"language"`
}

type PlayCardRequest struct {
	Player   int    `json:"player"`
	CardName string `json:"card_name"`
}

type PositionRequest struct {
	Position int `json:"position"`
}

type BluffRequest struct {
	Player int `json:"player"`
}

type RevealCardRequest struct {
	Index int `json:"index"`
}

type CapitalRequest struct {
	Player int    `json:"player"`
	Answer string `json:"answer"`
}

type CapitalDecisionRequest struct {
	Accepted bool `json:"accepted"`
}

type LanguageRequest struct {
	Language string `json:"language"`
}

// Categories is the catalog of playable categories and pools in one language.
type Categories struct {
	Language   string        `json:"language"`
	Categories []Category    `json:"categories"`
	Sets       []CategorySet `json:"category_sets"`
}

type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
