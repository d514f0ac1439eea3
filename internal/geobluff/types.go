package geobluff

import (
	"maps"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/park285/geobluff/internal/dataset"
)

// Phase is the single source of truth for which operations are legal.
type Phase string

const (
	PhasePlaying               Phase = "playing"
	PhasePlacing               Phase = "placing"
	PhaseBluffReveal           Phase = "bluff_reveal"
	PhaseBluffResult           Phase = "bluff_result"
	PhaseFinalValidation       Phase = "final_validation"
	PhaseFinalValidationResult Phase = "final_validation_result"
	PhaseCapitalCheck          Phase = "capital_check"
	PhaseCapitalValidation     Phase = "capital_validation"
	PhaseGameOver              Phase = "game_over"
)

// Player identifies a side, 1 or 2.
type Player int

const (
	NoPlayer Player = 0
	Player1  Player = 1
	Player2  Player = 2
)

func (p Player) Valid() bool { return p == Player1 || p == Player2 }

// Other returns the opponent.
func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) index() int { return int(p) - 1 }

const (
	MinHandSize     = 3
	MaxHandSize     = 10
	DefaultHandSize = 7
	DrawPenalty     = 2
)

var SupportedLanguages = []string{"fr", "en"}

// NormalizeLanguage maps anything outside SupportedLanguages to the default.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, l := range SupportedLanguages {
		if l == lang {
			return l
		}
	}
	return dataset.DefaultLanguage
}

// Placement is a card taken from the current player's hand but not yet
// committed to the board.
type Placement struct {
	Card      dataset.Country
	Index     int
	HandIndex int
}

// Bluff is the bookkeeping of a called bluff.
type Bluff struct {
	Caller Player
	Loser  Player
}

// FinalCheck is the bookkeeping of the final validation and the capital
// question that follows it.
type FinalCheck struct {
	Player    Player
	Card      dataset.Country
	Failed    bool
	Answer    string
	Answering Player
}

// MessagePart is a language-neutral outcome description, rendered to text
// only when the session is projected.
type MessagePart struct {
	Key    string
	Params map[string]any
}

// Deck supplies the reference data a session deals from.
type Deck interface {
	Countries() []dataset.Country
	ResolvePool(setID string) (string, []string)
}

// Options configures NewSession.
type Options struct {
	HandSize    int
	CategorySet string
	Language    string
	Rand        *rand.Rand
}

// Session is the full mutable state of one game. Callers must serialize
// access; nothing in here is safe for concurrent use.
type Session struct {
	ID          string
	Language    string
	Hands       [2][]dataset.Country
	Board       []dataset.Country
	Revealed    []bool
	Category    string
	CategorySet string
	Pool        []string
	Phase       Phase
	Current     Player
	Pending     *Placement
	Bluff       *Bluff
	Final       *FinalCheck
	Winner      Player
	Message     []MessagePart

	deck []dataset.Country
	rng  *rand.Rand
}

// Hand returns player p's cards. The slice aliases session state.
func (s *Session) Hand(p Player) []dataset.Country {
	if !p.Valid() {
		return nil
	}
	return s.Hands[p.index()]
}

// Clone deep-copies the session state. The deck and random source are shared.
func (s *Session) Clone() *Session {
	c := *s
	for i := range s.Hands {
		c.Hands[i] = slices.Clone(s.Hands[i])
	}
	c.Board = slices.Clone(s.Board)
	c.Revealed = slices.Clone(s.Revealed)
	c.Pool = slices.Clone(s.Pool)
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Bluff != nil {
		b := *s.Bluff
		c.Bluff = &b
	}
	if s.Final != nil {
		f := *s.Final
		c.Final = &f
	}
	if s.Message != nil {
		c.Message = make([]MessagePart, len(s.Message))
		for i, m := range s.Message {
			c.Message[i] = MessagePart{Key: m.Key, Params: maps.Clone(m.Params)}
		}
	}
	return &c
}
