package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/geobluff/internal/dataset"
	"github.com/park285/geobluff/internal/geobluff"
	"github.com/park285/geobluff/internal/msgcat"
	"github.com/park285/geobluff/internal/store"
	"github.com/park285/geobluff/pkg/geobluffdto"
)

type Config struct {
	DefaultLanguage string
	DefaultHandSize int
}

// Service runs game operations against the session store and returns
// projected views.
type Service struct {
	deck     *dataset.Provider
	catalog  *msgcat.Catalog
	sessions *store.Sessions
	presence store.Presence
	cfg      Config
	logger   *zap.Logger
	newID    func() string
	newRand  func() *rand.Rand
}

type Option func(*Service)

// WithIDs replaces the session id generator.
func WithIDs(f func() string) Option { return func(s *Service) { s.newID = f } }

// WithRand supplies the random source of each new session.
func WithRand(f func() *rand.Rand) Option { return func(s *Service) { s.newRand = f } }

func NewService(deck *dataset.Provider, catalog *msgcat.Catalog, sessions *store.Sessions, presence store.Presence, cfg Config, logger *zap.Logger, opts ...Option) (*Service, error) {
	if deck == nil || catalog == nil || sessions == nil || presence == nil {
		return nil, errors.New("game service: missing dependency")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.DefaultLanguage = geobluff.NormalizeLanguage(cfg.DefaultLanguage)
	s := &Service{
		deck:     deck,
		catalog:  catalog,
		sessions: sessions,
		presence: presence,
		cfg:      cfg,
		logger:   logger,
		newID:    func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewGame deals a fresh session and registers it.
func (s *Service) NewGame(ctx context.Context, req geobluffdto.NewGameRequest) (*geobluffdto.GameState, error) {
	lang := s.cfg.DefaultLanguage
	if strings.TrimSpace(req.Language) != "" {
		lang = geobluff.NormalizeLanguage(req.Language)
	}
	hand := req.HandSize
	if hand == 0 {
		hand = s.cfg.DefaultHandSize
	}
	opts := geobluff.Options{
		HandSize:    hand,
		CategorySet: strings.TrimSpace(req.CategorySet),
		Language:    lang,
	}
	if s.newRand != nil {
		opts.Rand = s.newRand()
	}

	gs, err := geobluff.NewSession(s.newID(), s.deck, opts)
	if err != nil {
		s.logger.Error("session_create_failed", zap.Error(err), zap.Int("hand_size", hand))
		return nil, err
	}
	s.sessions.Put(gs)
	s.logger.Info("session_create",
		zap.String("session_id", gs.ID),
		zap.Int("hand_size", len(gs.Hand(geobluff.Player1))),
		zap.String("category_set", gs.CategorySet),
		zap.String("category", gs.Category),
		zap.String("language", gs.Language),
	)
	return s.State(ctx, gs.ID, "")
}

// State projects the session, recording clientID as present when given.
func (s *Service) State(ctx context.Context, id, clientID string) (*geobluffdto.GameState, error) {
	var view *geobluffdto.GameState
	err := s.sessions.With(id, func(gs *geobluff.Session) error {
		view = s.project(ctx, gs, strings.TrimSpace(clientID))
		return nil
	})
	return view, err
}

func (s *Service) SetLanguage(ctx context.Context, id, lang string) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "set_language", func(gs *geobluff.Session) error {
		gs.SetLanguage(lang)
		return nil
	})
}

func (s *Service) ChangeCategory(ctx context.Context, id string) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "change_category", (*geobluff.Session).ChangeCategory)
}

func (s *Service) PlayCard(ctx context.Context, id string, req geobluffdto.PlayCardRequest) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "play_card", func(gs *geobluff.Session) error {
		return gs.PlayCard(geobluff.Player(req.Player), req.CardName)
	})
}

func (s *Service) SetPosition(ctx context.Context, id string, req geobluffdto.PositionRequest) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "set_position", func(gs *geobluff.Session) error {
		return gs.SetPosition(req.Position)
	})
}

func (s *Service) ValidatePlacement(ctx context.Context, id string) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "validate_placement", (*geobluff.Session).ValidatePlacement)
}

func (s *Service) CancelPlacement(ctx context.Context, id string) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "cancel_placement", (*geobluff.Session).CancelPlacement)
}

func (s *Service) CallBluff(ctx context.Context, id string, req geobluffdto.BluffRequest) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "call_bluff", func(gs *geobluff.Session) error {
		return gs.CallBluff(geobluff.Player(req.Player))
	})
}

func (s *Service) RevealCard(ctx context.Context, id string, req geobluffdto.RevealCardRequest) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "reveal_card", func(gs *geobluff.Session) error {
		return gs.RevealCard(req.Index)
	})
}

func (s *Service) ContinueAfterBluff(ctx context.Context, id string) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "continue_after_bluff", (*geobluff.Session).ContinueAfterBluff)
}

func (s *Service) ContinueAfterFinalValidation(ctx context.Context, id string) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "continue_after_final_validation", (*geobluff.Session).ContinueAfterFinalValidation)
}

func (s *Service) CheckCapital(ctx context.Context, id string, req geobluffdto.CapitalRequest) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "check_capital", func(gs *geobluff.Session) error {
		return gs.CheckCapitalAnswer(geobluff.Player(req.Player), req.Answer)
	})
}

func (s *Service) CapitalDecision(ctx context.Context, id string, req geobluffdto.CapitalDecisionRequest) (*geobluffdto.GameState, error) {
	return s.apply(ctx, id, "capital_decision", func(gs *geobluff.Session) error {
		return gs.ValidateCapitalDecision(req.Accepted)
	})
}

// Categories lists enabled categories and pools, labelled in lang.
func (s *Service) Categories(lang string) geobluffdto.Categories {
	if strings.TrimSpace(lang) == "" {
		lang = s.cfg.DefaultLanguage
	}
	lang = geobluff.NormalizeLanguage(lang)
	out := geobluffdto.Categories{Language: lang}
	for _, id := range s.deck.CategoryIDs() {
		out.Categories = append(out.Categories, geobluffdto.Category{ID: id, Label: s.deck.Label(id, lang)})
	}
	for _, p := range s.deck.Pools() {
		out.Sets = append(out.Sets, geobluffdto.CategorySet{
			ID:         p.ID,
			Label:      s.deck.PoolLabel(p.ID, lang),
			Categories: append([]string(nil), p.Categories...),
		})
	}
	return out
}

// Expire drops presence data of sessions removed by the store janitor.
func (s *Service) Expire(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.presence.Forget(ctx, id); err != nil {
			s.logger.Warn("presence_forget_failed", zap.String("session_id", id), zap.Error(err))
		}
		s.logger.Info("session_expired", zap.String("session_id", id))
	}
}

func (s *Service) apply(ctx context.Context, id, op string, fn func(*geobluff.Session) error) (*geobluffdto.GameState, error) {
	var view *geobluffdto.GameState
	err := s.sessions.With(id, func(gs *geobluff.Session) error {
		before := gs.Phase
		if err := fn(gs); err != nil {
			return err
		}
		s.logTransition(op, before, gs)
		view = s.project(ctx, gs, "")
		return nil
	})
	if err != nil {
		s.logger.Debug("operation_rejected", zap.String("session_id", id), zap.String("op", op), zap.Error(err))
		return nil, err
	}
	return view, nil
}

func (s *Service) logTransition(op string, before geobluff.Phase, gs *geobluff.Session) {
	base := []zap.Field{zap.String("session_id", gs.ID), zap.String("op", op)}
	s.logger.Debug("operation", append(base,
		zap.String("from", string(before)),
		zap.String("to", string(gs.Phase)),
	)...)
	if before == gs.Phase {
		return
	}

	switch {
	case gs.Phase == geobluff.PhaseBluffResult && gs.Bluff != nil:
		s.logger.Info("bluff_resolved", append(base,
			zap.Int("caller", int(gs.Bluff.Caller)),
			zap.Int("loser", int(gs.Bluff.Loser)),
			zap.String("category", gs.Category),
		)...)
	case before == geobluff.PhaseFinalValidation && gs.Final != nil:
		s.logger.Info("final_validation_resolved", append(base,
			zap.Int("player", int(gs.Final.Player)),
			zap.Bool("ordered", !gs.Final.Failed),
		)...)
	case before == geobluff.PhaseCapitalCheck:
		s.logger.Info("capital_checked", append(base, zap.Bool("correct", gs.Phase == geobluff.PhaseGameOver))...)
	case before == geobluff.PhaseCapitalValidation:
		s.logger.Info("capital_decided", append(base, zap.Bool("accepted", gs.Phase == geobluff.PhaseGameOver))...)
	}
	if gs.Phase == geobluff.PhaseGameOver {
		s.logger.Info("game_over", append(base, zap.Int("winner", int(gs.Winner)))...)
	}
}

func (s *Service) project(ctx context.Context, gs *geobluff.Session, clientID string) *geobluffdto.GameState {
	snap, err := s.presence.Observe(ctx, gs.ID, clientID)
	if err != nil {
		s.logger.Warn("presence_observe_failed", zap.String("session_id", gs.ID), zap.Error(err))
	}
	return geobluff.Project(gs, s.catalog, s.deck, geobluff.Presence{
		ActiveClients: snap.Active,
		OtherPresent:  snap.OtherPresent,
	})
}
