package geobluff

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/park285/geobluff/internal/dataset"
	"github.com/park285/geobluff/internal/similarity"
)

// Message keys. Parameters are documented next to each key.
const (
	MsgChoosePosition      = "choose_position"
	MsgFinalValidation     = "final_validation"
	MsgRevealCards         = "reveal_cards"
	MsgNewCategory         = "new_category"          // category_id
	MsgBluffCorrect        = "bluff_correct"         // player
	MsgBluffWrong          = "bluff_wrong"           // player
	MsgOrderCorrectCapital = "order_correct_capital" // player, country
	MsgOrderWrong          = "order_wrong"           // player
	MsgGameOverWin         = "game_over_win"         // player
	MsgCapitalCorrect      = "capital_correct"       // capital, player
	MsgCapitalIncorrect    = "capital_incorrect"     // answer, capital
	MsgCapitalAccepted     = "capital_accepted"      // player
	MsgCapitalRefused      = "capital_refused"       // capital, player
)

// ClampHandSize bounds n to [MinHandSize, MaxHandSize]; zero means the default.
func ClampHandSize(n int) int {
	if n == 0 {
		n = DefaultHandSize
	}
	return max(MinHandSize, min(n, MaxHandSize))
}

// NewSession deals a new game: two hands and a reference card from disjoint
// slices of a shuffled deck, and a random category from the requested pool.
func NewSession(id string, deck Deck, opts Options) (*Session, error) {
	countries := deck.Countries()
	hand := ClampHandSize(opts.HandSize)
	if len(countries) < 2*hand+1 {
		return nil, fmt.Errorf("%w: need %d countries, have %d", ErrDeckTooSmall, 2*hand+1, len(countries))
	}
	setID, pool := deck.ResolvePool(opts.CategorySet)
	if len(pool) == 0 {
		return nil, fmt.Errorf("category set %q resolves to no categories", opts.CategorySet)
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	shuffled := make([]dataset.Country, len(countries))
	for i, j := range rng.Perm(len(countries)) {
		shuffled[i] = countries[j]
	}

	s := &Session{
		ID:          id,
		Language:    NormalizeLanguage(opts.Language),
		CategorySet: setID,
		Pool:        pool,
		Phase:       PhasePlaying,
		Current:     Player1,
		deck:        countries,
		rng:         rng,
	}
	s.Hands[0] = slices.Clone(shuffled[:hand])
	s.Hands[1] = slices.Clone(shuffled[hand : 2*hand])
	s.Board = []dataset.Country{shuffled[2*hand]}
	s.Category = s.pickCategory("")
	return s, nil
}

// SetLanguage changes how the session is rendered. It never affects play.
func (s *Session) SetLanguage(lang string) {
	s.Language = NormalizeLanguage(lang)
}

// ChangeCategory draws a different category, allowed only before any card
// has been placed this round.
func (s *Session) ChangeCategory() error {
	if err := s.expect("Can only change category during playing phase", PhasePlaying); err != nil {
		return err
	}
	if len(s.Board) > 1 {
		return invalidArg("Cannot change category after cards have been placed")
	}
	s.Category = s.pickCategory(s.Category)
	s.setMessage(MsgNewCategory, map[string]any{"category_id": s.Category})
	return nil
}

// PlayCard moves a card from the player's hand into the pending slot,
// defaulting its target to the right end of the board.
func (s *Session) PlayCard(p Player, cardName string) error {
	if err := s.expect("Cannot play card now", PhasePlaying); err != nil {
		return err
	}
	if err := s.turn(p); err != nil {
		return err
	}
	hand := s.Hands[p.index()]
	i := slices.IndexFunc(hand, func(c dataset.Country) bool { return c.Name == cardName })
	if i < 0 {
		return invalidArg("Card not found")
	}

	card := hand[i]
	s.Hands[p.index()] = slices.Delete(slices.Clone(hand), i, i+1)
	s.Pending = &Placement{Card: card, Index: len(s.Board), HandIndex: i}
	s.Phase = PhasePlacing
	s.setMessage(MsgChoosePosition, nil)
	return nil
}

// SetPosition moves the pending card's target index; the board is untouched.
func (s *Session) SetPosition(index int) error {
	if err := s.expect("Not in placing phase", PhasePlacing); err != nil {
		return err
	}
	if index < 0 || index > len(s.Board) {
		return invalidArg("Position must be between 0 and %d", len(s.Board))
	}
	s.Pending.Index = index
	return nil
}

// ValidatePlacement commits the pending card. Emptying a hand always leads
// to final validation, whatever the board order.
func (s *Session) ValidatePlacement() error {
	if err := s.expect("Not in placing phase", PhasePlacing); err != nil {
		return err
	}
	card, at := s.Pending.Card, s.Pending.Index
	s.Board = slices.Insert(slices.Clone(s.Board), at, card)
	s.Pending = nil

	p := s.Current
	if len(s.Hands[p.index()]) == 0 {
		s.Phase = PhaseFinalValidation
		s.Final = &FinalCheck{Player: p, Card: card}
		s.Revealed = make([]bool, len(s.Board))
		s.setMessage(MsgFinalValidation, nil)
		return nil
	}

	s.Current = p.Other()
	s.Phase = PhasePlaying
	s.clearMessage()
	return nil
}

// CancelPlacement puts the pending card back where it was in the hand.
func (s *Session) CancelPlacement() error {
	if err := s.expect("Not in placing phase", PhasePlacing); err != nil {
		return err
	}
	p := s.Current
	hand := s.Hands[p.index()]
	at := min(s.Pending.HandIndex, len(hand))
	s.Hands[p.index()] = slices.Insert(slices.Clone(hand), at, s.Pending.Card)
	s.Pending = nil
	s.Phase = PhasePlaying
	s.clearMessage()
	return nil
}

// CallBluff challenges the current board order.
func (s *Session) CallBluff(p Player) error {
	if err := s.expect("Cannot call bluff now", PhasePlaying); err != nil {
		return err
	}
	if err := s.turn(p); err != nil {
		return err
	}
	if len(s.Board) < 2 {
		return invalidArg("Need at least 2 cards on board")
	}
	s.Phase = PhaseBluffReveal
	s.Bluff = &Bluff{Caller: p}
	s.Revealed = make([]bool, len(s.Board))
	s.setMessage(MsgRevealCards, nil)
	return nil
}

// RevealCard flips one board card. Once every card is face up the round is
// resolved: bluff result, or capital question / failure after a final
// validation.
func (s *Session) RevealCard(index int) error {
	if err := s.expect("Not in reveal phase", PhaseBluffReveal, PhaseFinalValidation); err != nil {
		return err
	}
	if index < 0 || index >= len(s.Board) {
		return invalidArg("Invalid card index")
	}
	if len(s.Revealed) != len(s.Board) {
		s.Revealed = make([]bool, len(s.Board))
	}
	s.Revealed[index] = true
	if slices.Contains(s.Revealed, false) {
		return nil
	}

	ordered := BoardInOrder(s.Board, s.Category)
	if s.Phase == PhaseBluffReveal {
		s.resolveBluff(ordered)
	} else {
		s.resolveFinal(ordered)
	}
	return nil
}

func (s *Session) resolveBluff(ordered bool) {
	caller := s.Bluff.Caller
	if ordered {
		s.Bluff.Loser = caller
		s.setMessage(MsgBluffCorrect, map[string]any{"player": int(caller)})
	} else {
		s.Bluff.Loser = caller.Other()
		s.setMessage(MsgBluffWrong, map[string]any{"player": int(s.Bluff.Loser)})
	}
	s.Phase = PhaseBluffResult
}

func (s *Session) resolveFinal(ordered bool) {
	p := s.Final.Player
	if ordered {
		s.Phase = PhaseCapitalCheck
		s.setMessage(MsgOrderCorrectCapital, map[string]any{"player": int(p), "country": s.Final.Card.Name})
		return
	}
	s.Final.Failed = true
	s.Phase = PhaseFinalValidationResult
	s.setMessage(MsgOrderWrong, map[string]any{"player": int(p)})
}

// ContinueAfterBluff discards the board, makes the loser draw and starts a
// new round led by the loser.
func (s *Session) ContinueAfterBluff() error {
	if err := s.expect("Not in bluff result phase", PhaseBluffResult); err != nil {
		return err
	}
	loser := s.Bluff.Loser
	s.Board = nil
	s.Bluff = nil
	s.Revealed = nil
	s.draw(loser, DrawPenalty)
	if s.finishOnEmptyHand() {
		return nil
	}
	s.startRound(loser)
	return nil
}

// ContinueAfterFinalValidation handles a failed final validation: the board
// is discarded, the final player draws, and the opponent leads the next round.
func (s *Session) ContinueAfterFinalValidation() error {
	if err := s.expect("Not in final validation result phase", PhaseFinalValidationResult); err != nil {
		return err
	}
	p := s.Final.Player
	s.Board = nil
	s.Final = nil
	s.Revealed = nil
	s.draw(p, DrawPenalty)
	if s.finishOnEmptyHand() {
		return nil
	}
	s.startRound(p.Other())
	return nil
}

// CheckCapitalAnswer wins the game on a fuzzy match; otherwise the opponent
// gets to arbitrate the answer.
func (s *Session) CheckCapitalAnswer(p Player, answer string) error {
	if err := s.expect("Not in capital check phase", PhaseCapitalCheck); err != nil {
		return err
	}
	if p != s.Final.Player {
		return notYourTurn()
	}
	card := s.Final.Card
	if similarity.MatchesAny(answer, card.AcceptedCapitals()...) {
		s.Phase = PhaseGameOver
		s.Winner = p
		s.setMessage(MsgCapitalCorrect, map[string]any{"capital": card.Capital, "player": int(p)})
		return nil
	}
	s.Phase = PhaseCapitalValidation
	s.Final.Answer = answer
	s.Final.Answering = p
	s.setMessage(MsgCapitalIncorrect, map[string]any{"answer": answer, "capital": card.Capital})
	return nil
}

// ValidateCapitalDecision is the opponent's ruling on a rejected answer.
// Accepting ends the game; refusing removes the contested card, the answering
// player draws and the turn passes to the opponent.
func (s *Session) ValidateCapitalDecision(accepted bool) error {
	if err := s.expect("Not in capital validation phase", PhaseCapitalValidation); err != nil {
		return err
	}
	p, card := s.Final.Answering, s.Final.Card
	s.Final = nil
	s.Revealed = nil

	if accepted {
		s.Phase = PhaseGameOver
		s.Winner = p
		s.setMessage(MsgCapitalAccepted, map[string]any{"player": int(p)})
		return nil
	}

	s.Board = slices.DeleteFunc(slices.Clone(s.Board), func(c dataset.Country) bool { return c.Name == card.Name })
	s.draw(p, DrawPenalty)
	s.Phase = PhasePlaying
	s.Current = p.Other()
	s.setMessage(MsgCapitalRefused, map[string]any{"capital": card.Capital, "player": int(p)})
	s.finishOnEmptyHand()
	return nil
}

func (s *Session) expect(msg string, phases ...Phase) error {
	if slices.Contains(phases, s.Phase) {
		return nil
	}
	return illegalPhase(msg)
}

func (s *Session) turn(p Player) error {
	if !p.Valid() {
		return invalidArg("Player must be 1 or 2")
	}
	if p != s.Current {
		return notYourTurn()
	}
	return nil
}

// undrawn lists deck cards that are neither in a hand nor on the board.
func (s *Session) undrawn() []dataset.Country {
	used := make(map[string]struct{}, len(s.Hands[0])+len(s.Hands[1])+len(s.Board))
	for _, group := range [][]dataset.Country{s.Hands[0], s.Hands[1], s.Board} {
		for _, c := range group {
			used[c.Name] = struct{}{}
		}
	}
	var out []dataset.Country
	for _, c := range s.deck {
		if _, ok := used[c.Name]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// draw gives p up to n random undrawn cards and returns how many were dealt.
func (s *Session) draw(p Player, n int) int {
	avail := s.undrawn()
	k := min(n, len(avail))
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(len(avail)-i)
		avail[i], avail[j] = avail[j], avail[i]
	}
	s.Hands[p.index()] = append(slices.Clone(s.Hands[p.index()]), avail[:k]...)
	return k
}

// finishOnEmptyHand ends the game when a hand is empty after a draw.
func (s *Session) finishOnEmptyHand() bool {
	for _, p := range []Player{Player1, Player2} {
		if len(s.Hands[p.index()]) == 0 {
			s.Phase = PhaseGameOver
			s.Winner = p
			s.Pending = nil
			s.setMessage(MsgGameOverWin, map[string]any{"player": int(p)})
			return true
		}
	}
	return false
}

// startRound resets the board with a fresh reference card and category.
// When every country is already held, the reference card is recycled from
// the starter's hand.
func (s *Session) startRound(starter Player) {
	s.Category = s.pickCategory("")
	var ref dataset.Country
	if avail := s.undrawn(); len(avail) > 0 {
		ref = avail[s.rng.IntN(len(avail))]
	} else {
		from := starter
		if len(s.Hands[from.index()]) == 0 {
			from = starter.Other()
		}
		hand := s.Hands[from.index()]
		ref = hand[0]
		s.Hands[from.index()] = slices.Clone(hand[1:])
	}
	s.Board = []dataset.Country{ref}
	s.Current = starter
	s.Phase = PhasePlaying
	s.Revealed = nil
	s.appendMessage(MsgNewCategory, map[string]any{"category_id": s.Category})
}

// pickCategory draws from the session pool, avoiding exclude when possible.
func (s *Session) pickCategory(exclude string) string {
	pool := s.Pool
	if exclude != "" && len(pool) > 1 {
		candidates := slices.DeleteFunc(slices.Clone(pool), func(c string) bool { return c == exclude })
		if len(candidates) > 0 {
			pool = candidates
		}
	}
	return pool[s.rng.IntN(len(pool))]
}

func (s *Session) setMessage(key string, params map[string]any) {
	s.Message = []MessagePart{{Key: key, Params: params}}
}

func (s *Session) appendMessage(key string, params map[string]any) {
	s.Message = append(slices.Clone(s.Message), MessagePart{Key: key, Params: params})
}

func (s *Session) clearMessage() { s.Message = nil }
