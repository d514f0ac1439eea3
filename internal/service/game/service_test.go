package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/park285/geobluff/internal/dataset"
	"github.com/park285/geobluff/internal/geobluff"
	"github.com/park285/geobluff/internal/msgcat"
	"github.com/park285/geobluff/internal/store"
	"github.com/park285/geobluff/pkg/geobluffdto"
)

func newTestService(t *testing.T) (*Service, *observer.ObservedLogs) {
	t.Helper()
	deck, err := dataset.Default()
	require.NoError(t, err)
	catalog, err := msgcat.New("")
	require.NoError(t, err)
	clock := quartz.NewMock(t)
	core, logs := observer.New(zap.DebugLevel)

	n := 0
	svc, err := NewService(deck, catalog, store.NewSessions(clock, 0), store.NewMemoryPresence(clock, 0),
		Config{DefaultLanguage: "fr", DefaultHandSize: 3}, zap.New(core),
		WithIDs(func() string { n++; return fmt.Sprintf("g%d", n) }),
		WithRand(func() *rand.Rand { return rand.New(rand.NewPCG(9, 9)) }),
	)
	require.NoError(t, err)
	return svc, logs
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, Config{}, nil)
	assert.Error(t, err)
}

func TestNewGameAndState(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()

	view, err := svc.NewGame(ctx, geobluffdto.NewGameRequest{})
	require.NoError(t, err)
	assert.Equal(t, "g1", view.GameID)
	assert.Equal(t, "playing", view.Phase)
	assert.Equal(t, "fr", view.Language)
	assert.Len(t, view.Player1Cards, 3)
	assert.Len(t, view.Board, 1)
	assert.Nil(t, view.Message)
	assert.Equal(t, 1, logs.FilterMessage("session_create").Len())

	view, err = svc.State(ctx, "g1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, view.ActiveClients)
	assert.False(t, view.OtherPresent)

	view, err = svc.State(ctx, "g1", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, view.ActiveClients)
	assert.True(t, view.OtherPresent)

	_, err = svc.State(ctx, "missing", "")
	assert.ErrorIs(t, err, geobluff.ErrUnknownSession)
}

func TestNewGameOptions(t *testing.T) {
	svc, _ := newTestService(t)
	view, err := svc.NewGame(context.Background(), geobluffdto.NewGameRequest{HandSize: 5, CategorySet: "basic", Language: "en"})
	require.NoError(t, err)
	assert.Len(t, view.Player2Cards, 5)
	require.NotNil(t, view.CategorySet)
	assert.Equal(t, "basic", *view.CategorySet)
	assert.Equal(t, "en", view.Language)

	pool, ok := svc.deck.Pool("basic")
	require.True(t, ok)
	assert.Contains(t, pool.Categories, view.Category)
}

func TestPlayRoundThroughService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	view, err := svc.NewGame(ctx, geobluffdto.NewGameRequest{Language: "en"})
	require.NoError(t, err)

	_, err = svc.PlayCard(ctx, "g1", geobluffdto.PlayCardRequest{Player: 2, CardName: view.Player2Cards[0].Name})
	assert.ErrorIs(t, err, geobluff.ErrNotYourTurn)

	view, err = svc.PlayCard(ctx, "g1", geobluffdto.PlayCardRequest{Player: 1, CardName: view.Player1Cards[0].Name})
	require.NoError(t, err)
	assert.Equal(t, "placing", view.Phase)
	require.NotNil(t, view.Message)
	assert.Equal(t, "Choose the position, then confirm", *view.Message)

	view, err = svc.SetPosition(ctx, "g1", geobluffdto.PositionRequest{Position: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, *view.PendingPosition)

	view, err = svc.ValidatePlacement(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.CurrentPlayer)
	assert.Len(t, view.Board, 2)

	view, err = svc.CallBluff(ctx, "g1", geobluffdto.BluffRequest{Player: 2})
	require.NoError(t, err)
	assert.Equal(t, "bluff_reveal", view.Phase)

	for i := range view.Board {
		view, err = svc.RevealCard(ctx, "g1", geobluffdto.RevealCardRequest{Index: i})
		require.NoError(t, err)
	}
	assert.Equal(t, "bluff_result", view.Phase)
	require.NotNil(t, view.BluffLoser)
	loser := *view.BluffLoser

	view, err = svc.ContinueAfterBluff(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "playing", view.Phase)
	assert.Equal(t, loser, view.CurrentPlayer)
	require.NotNil(t, view.Message)
	assert.Contains(t, *view.Message, "New category: "+view.CategoryLabel)
}

func TestChangeCategoryAndLanguage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	view, err := svc.NewGame(ctx, geobluffdto.NewGameRequest{})
	require.NoError(t, err)
	prev := view.Category

	view, err = svc.ChangeCategory(ctx, "g1")
	require.NoError(t, err)
	assert.NotEqual(t, prev, view.Category)
	require.NotNil(t, view.Message)
	assert.Equal(t, "Nouvelle catégorie : "+view.CategoryLabel, *view.Message)

	view, err = svc.SetLanguage(ctx, "g1", "en")
	require.NoError(t, err)
	assert.Equal(t, "en", view.Language)
	assert.Equal(t, "New category: "+view.CategoryLabel, *view.Message)
}

func TestOperationLogging(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()
	_, err := svc.NewGame(ctx, geobluffdto.NewGameRequest{})
	require.NoError(t, err)

	_, err = svc.CancelPlacement(ctx, "g1")
	assert.ErrorIs(t, err, geobluff.ErrIllegalPhase)
	assert.Equal(t, 1, logs.FilterMessage("operation_rejected").Len())

	_, err = svc.ContinueAfterFinalValidation(ctx, "g1")
	assert.ErrorIs(t, err, geobluff.ErrIllegalPhase)
	_, err = svc.CheckCapital(ctx, "g1", geobluffdto.CapitalRequest{Player: 1, Answer: "x"})
	assert.ErrorIs(t, err, geobluff.ErrIllegalPhase)
	_, err = svc.CapitalDecision(ctx, "g1", geobluffdto.CapitalDecisionRequest{Accepted: true})
	assert.ErrorIs(t, err, geobluff.ErrIllegalPhase)
	assert.Equal(t, 4, logs.FilterMessage("operation_rejected").Len())
}

func TestCategories(t *testing.T) {
	svc, _ := newTestService(t)
	fr := svc.Categories("")
	en := svc.Categories("en")
	assert.Equal(t, "fr", fr.Language)
	require.NotEmpty(t, fr.Categories)
	require.Len(t, en.Categories, len(fr.Categories))
	assert.NotEmpty(t, en.Sets)
	for i := range fr.Categories {
		assert.Equal(t, fr.Categories[i].ID, en.Categories[i].ID)
	}
}

func TestExpireLogs(t *testing.T) {
	svc, logs := newTestService(t)
	svc.Expire(context.Background(), []string{"a", "b"})
	assert.Equal(t, 2, logs.FilterMessage("session_expired").Len())
}
