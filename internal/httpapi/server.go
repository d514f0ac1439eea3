package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/geobluff/internal/geobluff"
	"github.com/park285/geobluff/internal/service/game"
	"github.com/park285/geobluff/pkg/geobluffdto"
)

// Server exposes the game service as a JSON API.
type Server struct {
	svc    *game.Service
	logger *zap.Logger
	srv    *fasthttp.Server
}

func New(svc *game.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}
	s.srv = &fasthttp.Server{
		Handler:      s.Handle,
		Name:         "geobluff",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error { return s.srv.ListenAndServe(addr) }

func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

type errBadBody struct{ err error }

func (e errBadBody) Error() string { return "invalid request body: " + e.err.Error() }

// Handle routes:
//
//	POST /api/new-game
//	GET  /api/categories
//	GET  /api/games/{id}
//	POST /api/games/{id}/{op}
func (s *Server) Handle(rc *fasthttp.RequestCtx) {
	parts := strings.Split(strings.Trim(string(rc.Path()), "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		s.writeError(rc, fasthttp.StatusNotFound, errors.New("not found"))
		return
	}
	ctx := context.Background()

	switch {
	case len(parts) == 2 && parts[1] == "new-game":
		if !s.allow(rc, fasthttp.MethodPost) {
			return
		}
		var req geobluffdto.NewGameRequest
		if err := decode(rc, &req); err != nil {
			s.fail(rc, err)
			return
		}
		s.reply(rc)(s.svc.NewGame(ctx, req))

	case len(parts) == 2 && parts[1] == "categories":
		if !s.allow(rc, fasthttp.MethodGet) {
			return
		}
		s.writeJSON(rc, fasthttp.StatusOK, s.svc.Categories(string(rc.QueryArgs().Peek("language"))))

	case len(parts) == 3 && parts[1] == "games":
		if !s.allow(rc, fasthttp.MethodGet) {
			return
		}
		s.reply(rc)(s.svc.State(ctx, parts[2], string(rc.QueryArgs().Peek("client_id"))))

	case len(parts) == 4 && parts[1] == "games":
		if !s.allow(rc, fasthttp.MethodPost) {
			return
		}
		s.operation(ctx, rc, parts[2], parts[3])

	default:
		s.writeError(rc, fasthttp.StatusNotFound, errors.New("not found"))
	}
}

func (s *Server) operation(ctx context.Context, rc *fasthttp.RequestCtx, id, op string) {
	reply := s.reply(rc)
	switch op {
	case "change-category":
		reply(s.svc.ChangeCategory(ctx, id))
	case "validate-placement":
		reply(s.svc.ValidatePlacement(ctx, id))
	case "cancel-placement":
		reply(s.svc.CancelPlacement(ctx, id))
	case "continue-after-bluff":
		reply(s.svc.ContinueAfterBluff(ctx, id))
	case "continue-after-final-validation":
		reply(s.svc.ContinueAfterFinalValidation(ctx, id))
	case "play-card":
		var req geobluffdto.PlayCardRequest
		if s.bind(rc, &req) {
			reply(s.svc.PlayCard(ctx, id, req))
		}
	case "set-position":
		var req geobluffdto.PositionRequest
		if s.bind(rc, &req) {
			reply(s.svc.SetPosition(ctx, id, req))
		}
	case "call-bluff":
		var req geobluffdto.BluffRequest
		if s.bind(rc, &req) {
			reply(s.svc.CallBluff(ctx, id, req))
		}
	case "reveal-card":
		var req geobluffdto.RevealCardRequest
		if s.bind(rc, &req) {
			reply(s.svc.RevealCard(ctx, id, req))
		}
	case "check-capital":
		var req geobluffdto.CapitalRequest
		if s.bind(rc, &req) {
			reply(s.svc.CheckCapital(ctx, id, req))
		}
	case "capital-decision":
		var req geobluffdto.CapitalDecisionRequest
		if s.bind(rc, &req) {
			reply(s.svc.CapitalDecision(ctx, id, req))
		}
	case "language":
		var req geobluffdto.LanguageRequest
		if s.bind(rc, &req) {
			reply(s.svc.SetLanguage(ctx, id, req.Language))
		}
	default:
		s.writeError(rc, fasthttp.StatusNotFound, errors.New("unknown operation: "+op))
	}
}

func (s *Server) allow(rc *fasthttp.RequestCtx, method string) bool {
	if string(rc.Method()) == method {
		return true
	}
	rc.Response.Header.Set(fasthttp.HeaderAllow, method)
	s.writeError(rc, fasthttp.StatusMethodNotAllowed, errors.New("method not allowed"))
	return false
}

func (s *Server) bind(rc *fasthttp.RequestCtx, v any) bool {
	if err := decode(rc, v); err != nil {
		s.fail(rc, err)
		return false
	}
	return true
}

// decode reads a JSON body. An empty body leaves v at its zero value.
func decode(rc *fasthttp.RequestCtx, v any) error {
	body := bytes.TrimSpace(rc.PostBody())
	if len(body) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadBody{err}
	}
	return nil
}

func (s *Server) reply(rc *fasthttp.RequestCtx) func(*geobluffdto.GameState, error) {
	return func(view *geobluffdto.GameState, err error) {
		if err != nil {
			s.fail(rc, err)
			return
		}
		s.writeJSON(rc, fasthttp.StatusOK, view)
	}
}

func (s *Server) fail(rc *fasthttp.RequestCtx, err error) {
	status := StatusFor(err)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("http_request_error",
			zap.String("method", string(rc.Method())),
			zap.String("path", string(rc.Path())),
			zap.Error(err),
		)
	} else {
		s.logger.Debug("http_request_error",
			zap.String("path", string(rc.Path())),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	s.writeError(rc, status, err)
}

// StatusFor maps an operation error to an HTTP status.
func StatusFor(err error) int {
	var bad errBadBody
	switch {
	case errors.As(err, &bad):
		return fasthttp.StatusUnprocessableEntity
	case errors.Is(err, geobluff.ErrUnknownSession):
		return fasthttp.StatusNotFound
	case errors.Is(err, geobluff.ErrIllegalPhase),
		errors.Is(err, geobluff.ErrNotYourTurn),
		errors.Is(err, geobluff.ErrInvalidArgument),
		errors.Is(err, geobluff.ErrDeckTooSmall):
		return fasthttp.StatusBadRequest
	default:
		return fasthttp.StatusInternalServerError
	}
}

// CodeFor returns the machine-readable class of err, or "" when unclassified.
func CodeFor(err error) string {
	var op *geobluff.OpError
	var bad errBadBody
	switch {
	case errors.As(err, &op):
		return strings.ReplaceAll(op.Kind.Error(), " ", "_")
	case errors.As(err, &bad):
		return "invalid_body"
	case errors.Is(err, geobluff.ErrDeckTooSmall):
		return "deck_too_small"
	default:
		return ""
	}
}

func (s *Server) writeError(rc *fasthttp.RequestCtx, status int, err error) {
	s.writeJSON(rc, status, geobluffdto.ErrorPayload{Error: err.Error(), Code: CodeFor(err)})
}

func (s *Server) writeJSON(rc *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("http_encode_failed", zap.Error(err))
		rc.Error(`{"error":"internal error"}`, fasthttp.StatusInternalServerError)
		rc.SetContentType("application/json")
		return
	}
	rc.SetStatusCode(status)
	rc.SetContentType("application/json; charset=utf-8")
	rc.SetBody(raw)
}
