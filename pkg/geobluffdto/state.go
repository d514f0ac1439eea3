package geobluffdto

// Card is a country as seen by clients. Value is omitted while hidden.
type Card struct {
	Name    string   `json:"name"`
	Flag    string   `json:"flag"`
	Capital string   `json:"capital"`
	Value   *float64 `json:"value,omitempty"`
}

// BoardCard adds board-only flags. Revealed is absent outside reveal phases.
type BoardCard struct {
	Card
	Revealed    *bool `json:"revealed,omitempty"`
	IsReference bool  `json:"is_reference"`
}

// GameState is the projected, phase-dependent view of a session.
type GameState struct {
	GameID                string      `json:"game_id"`
	Phase                 string      `json:"phase"`
	Language              string      `json:"language"`
	Category              string      `json:"category"`
	CategoryLabel         string      `json:"category_label"`
	CategorySet           *string     `json:"category_set"`
	CurrentPlayer         int         `json:"current_player"`
	Player1Cards          []Card      `json:"player1_cards"`
	Player2Cards          []Card      `json:"player2_cards"`
	Board                 []BoardCard `json:"board"`
	PendingCard           *Card       `json:"pending_card"`
	PendingPosition       *int        `json:"pending_position"`
	BluffCaller           *int        `json:"bluff_caller"`
	BluffLoser            *int        `json:"bluff_loser,omitempty"`
	FinalPlayer           *int        `json:"final_player,omitempty"`
	FinalValidationFailed bool        `json:"final_validation_failed,omitempty"`
	CapitalCard           *Card       `json:"capital_card,omitempty"`
	CapitalAnswer         *string     `json:"capital_answer,omitempty"`
	CapitalPlayer         *int        `json:"capital_player,omitempty"`
	Winner                *int        `json:"winner"`
	Message               *string     `json:"message"`
	ActiveClients         int         `json:"active_clients"`
	OtherPresent          bool        `json:"other_present"`
}

// CategorySet describes a selectable pool of categories.
type CategorySet struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Categories []string `json:"categories"`
}
