package geobluff

import (
	"strings"

	"github.com/park285/geobluff/internal/dataset"
	"github.com/park285/geobluff/pkg/geobluffdto"
)

// Renderer turns a message descriptor into display text.
type Renderer interface {
	Text(lang, key string, params map[string]any) string
}

// Labeler returns the localized label of a category.
type Labeler interface {
	Label(categoryID, lang string) string
}

// Presence is the liveness summary attached to a projection.
type Presence struct {
	ActiveClients int
	OtherPresent  bool
}

// Project derives the client view of s. Card values are withheld while
// cards are in play, shown per card during reveals, and shown in full once
// a round is resolved.
func Project(s *Session, r Renderer, l Labeler, presence Presence) *geobluffdto.GameState {
	lang := NormalizeLanguage(s.Language)
	out := &geobluffdto.GameState{
		GameID:        s.ID,
		Phase:         string(s.Phase),
		Language:      lang,
		Category:      s.Category,
		CategoryLabel: s.Category,
		CurrentPlayer: int(s.Current),
		ActiveClients: presence.ActiveClients,
		OtherPresent:  presence.OtherPresent,
	}
	if l != nil {
		out.CategoryLabel = l.Label(s.Category, lang)
	}
	if s.CategorySet != "" {
		out.CategorySet = ptr(s.CategorySet)
	}

	hidden := func(c dataset.Country) geobluffdto.Card {
		return geobluffdto.Card{Name: c.Name, Flag: c.Flag, Capital: c.Capital}
	}
	full := func(c dataset.Country) geobluffdto.Card {
		card := hidden(c)
		card.Value = ptr(c.Value(s.Category))
		return card
	}
	hand := func(p Player, f func(dataset.Country) geobluffdto.Card) []geobluffdto.Card {
		cards := make([]geobluffdto.Card, 0, len(s.Hand(p)))
		for _, c := range s.Hand(p) {
			cards = append(cards, f(c))
		}
		return cards
	}

	out.Board = make([]geobluffdto.BoardCard, 0, len(s.Board))
	switch s.Phase {
	case PhasePlaying, PhasePlacing:
		out.Player1Cards = hand(Player1, hidden)
		out.Player2Cards = hand(Player2, hidden)
		for i, c := range s.Board {
			out.Board = append(out.Board, geobluffdto.BoardCard{Card: hidden(c), IsReference: i == 0})
		}
	case PhaseBluffReveal, PhaseFinalValidation:
		out.Player1Cards = hand(Player1, hidden)
		out.Player2Cards = hand(Player2, hidden)
		for i, c := range s.Board {
			revealed := i < len(s.Revealed) && s.Revealed[i]
			card := hidden(c)
			if revealed {
				card = full(c)
			}
			out.Board = append(out.Board, geobluffdto.BoardCard{Card: card, Revealed: ptr(revealed), IsReference: i == 0})
		}
	default:
		out.Player1Cards = hand(Player1, full)
		out.Player2Cards = hand(Player2, full)
		for i, c := range s.Board {
			out.Board = append(out.Board, geobluffdto.BoardCard{Card: full(c), Revealed: ptr(true), IsReference: i == 0})
		}
	}

	if s.Pending != nil {
		out.PendingCard = ptr(hidden(s.Pending.Card))
		out.PendingPosition = ptr(s.Pending.Index)
	}
	if s.Bluff != nil {
		out.BluffCaller = ptr(int(s.Bluff.Caller))
		if s.Bluff.Loser != NoPlayer {
			out.BluffLoser = ptr(int(s.Bluff.Loser))
		}
	}
	if s.Final != nil {
		out.FinalPlayer = ptr(int(s.Final.Player))
		out.FinalValidationFailed = s.Final.Failed
		out.CapitalCard = ptr(hidden(s.Final.Card))
		if s.Final.Answering != NoPlayer {
			out.CapitalAnswer = ptr(s.Final.Answer)
			out.CapitalPlayer = ptr(int(s.Final.Answering))
		}
	}
	if s.Phase == PhaseGameOver && s.Winner.Valid() {
		out.Winner = ptr(int(s.Winner))
	}
	if text := RenderMessage(s.Message, lang, r, l); text != "" {
		out.Message = ptr(text)
	}
	return out
}

// RenderMessage renders and joins message parts. A category_id parameter
// gets a matching localized label parameter unless one is already set.
func RenderMessage(parts []MessagePart, lang string, r Renderer, l Labeler) string {
	if len(parts) == 0 || r == nil {
		return ""
	}
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		params := make(map[string]any, len(part.Params)+1)
		for k, v := range part.Params {
			params[k] = v
		}
		if id, ok := params["category_id"].(string); ok && l != nil {
			if _, has := params["label"]; !has {
				params["label"] = l.Label(id, lang)
			}
		}
		texts = append(texts, r.Text(lang, part.Key, params))
	}
	return strings.Join(texts, " ")
}

func ptr[T any](v T) *T { return &v }
