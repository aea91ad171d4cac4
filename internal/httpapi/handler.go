package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/adapter/checkerspresenter"
	corecheckers "github.com/park285/cheese-checkers/internal/checkers"
	svc "github.com/park285/cheese-checkers/internal/service/checkers"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypePNG  = "image/png"
	maxBodyBytes    = 16 << 10
)

type Handler struct {
	service   *svc.Service
	formatter *checkerspresenter.Formatter
	logger    *zap.Logger
	timeout   time.Duration
}

type Option func(*Handler)

func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func New(service *svc.Service, formatter *checkerspresenter.Formatter, opts ...Option) *Handler {
	h := &Handler{
		service:   service,
		formatter: formatter,
		logger:    zap.NewNop(),
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is the fasthttp entry point.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/healthz" && method == fasthttp.MethodGet:
		h.health(ctx)
	case path == "/sessions" && method == fasthttp.MethodPost:
		h.start(ctx)
	case path == "/sessions/status" && method == fasthttp.MethodGet:
		h.status(ctx)
	case path == "/sessions/options" && method == fasthttp.MethodGet:
		h.options(ctx)
	case path == "/sessions/moves" && method == fasthttp.MethodPost:
		h.play(ctx)
	case path == "/sessions/resign" && method == fasthttp.MethodPost:
		h.resign(ctx)
	case path == "/sessions/board.png" && method == fasthttp.MethodGet:
		h.board(ctx)
	case path == "/history" && method == fasthttp.MethodGet:
		h.history(ctx)
	case path == "/games" && method == fasthttp.MethodGet:
		h.game(ctx)
	case path == "/profile" && method == fasthttp.MethodGet:
		h.profile(ctx)
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (h *Handler) health(ctx *fasthttp.RequestCtx) {
	rctx, cancel := h.requestContext()
	defer cancel()
	if err := h.service.Ping(rctx); err != nil {
		h.logger.Warn("checkers_health_failed", zap.Error(err))
		ctx.Error("session store unavailable", fasthttp.StatusServiceUnavailable)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString("ok")
}

func (h *Handler) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

// metaFromQuery reads room/player/session_id from the query string.
func metaFromQuery(ctx *fasthttp.RequestCtx) svc.SessionMeta {
	args := ctx.QueryArgs()
	return svc.SessionMeta{
		SessionID: strings.TrimSpace(string(args.Peek("session_id"))),
		Room:      strings.TrimSpace(string(args.Peek("room"))),
		Sender:    strings.TrimSpace(string(args.Peek("player"))),
	}
}

// decodeBody fills dest from a JSON body; an empty body is accepted.
func decodeBody(ctx *fasthttp.RequestCtx, dest any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return nil
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}
	return json.Unmarshal(body, dest)
}

// metaFromBody merges body fields over query fields.
func metaFromBody(ctx *fasthttp.RequestCtx, body checkersdto.RequestMeta) svc.SessionMeta {
	meta := metaFromQuery(ctx)
	if v := strings.TrimSpace(body.SessionID); v != "" {
		meta.SessionID = v
	}
	if v := strings.TrimSpace(body.Room); v != "" {
		meta.Room = v
	}
	if v := strings.TrimSpace(body.Sender); v != "" {
		meta.Sender = v
	}
	return meta
}

// validMeta requires room and player; session_id only overrides the session key.
func validMeta(meta svc.SessionMeta) bool {
	return meta.Room != "" && meta.Sender != ""
}

func (h *Handler) start(ctx *fasthttp.RequestCtx) {
	var req checkersdto.RequestMeta
	if err := decodeBody(ctx, &req); err != nil {
		h.badRequest(ctx, err.Error())
		return
	}
	meta := metaFromBody(ctx, req)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}

	rctx, cancel := h.requestContext()
	defer cancel()
	state, err := h.service.StartSession(rctx, meta)
	resumed := false
	if errors.Is(err, svc.ErrSessionInProgress) && state != nil {
		resumed = true
		err = nil
	}
	if err != nil {
		h.fail(ctx, err)
		return
	}
	dto := checkerspresenter.ToDTOState(state)
	status := fasthttp.StatusCreated
	if resumed {
		status = fasthttp.StatusOK
	}
	h.writeJSON(ctx, status, checkersdto.StartSessionResponse{
		State:   dto,
		Resumed: resumed,
		Message: h.formatter.Start(dto, resumed),
	})
}

func (h *Handler) status(ctx *fasthttp.RequestCtx) {
	meta := metaFromQuery(ctx)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}
	rctx, cancel := h.requestContext()
	defer cancel()
	state, err := h.service.Status(rctx, meta)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	dto := checkerspresenter.ToDTOState(state)
	h.writeJSON(ctx, fasthttp.StatusOK, checkersdto.StatusResponse{
		State:   dto,
		Message: h.formatter.Status(dto),
	})
}

func (h *Handler) options(ctx *fasthttp.RequestCtx) {
	meta := metaFromQuery(ctx)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}
	from, ok := positionFromQuery(ctx)
	if !ok {
		h.badRequest(ctx, "x and y must be integers")
		return
	}
	rctx, cancel := h.requestContext()
	defer cancel()
	result, err := h.service.Options(rctx, meta, from)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, checkersdto.OptionsResponse{
		Options: checkerspresenter.ToDTOOptions(result),
	})
}

func positionFromQuery(ctx *fasthttp.RequestCtx) (corecheckers.Position, bool) {
	args := ctx.QueryArgs()
	x, errX := strconv.Atoi(string(args.Peek("x")))
	y, errY := strconv.Atoi(string(args.Peek("y")))
	if errX != nil || errY != nil {
		return corecheckers.Position{}, false
	}
	return corecheckers.Position{X: x, Y: y}, true
}

func (h *Handler) play(ctx *fasthttp.RequestCtx) {
	var req checkersdto.MoveRequest
	if err := decodeBody(ctx, &req); err != nil {
		h.badRequest(ctx, err.Error())
		return
	}
	meta := metaFromBody(ctx, req.RequestMeta)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}
	rctx, cancel := h.requestContext()
	defer cancel()
	summary, err := h.service.Play(rctx, meta,
		checkerspresenter.FromDTOPosition(req.From),
		checkerspresenter.FromDTOPosition(req.To),
	)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	dto := checkerspresenter.ToDTOMoveSummary(summary)
	h.writeJSON(ctx, fasthttp.StatusOK, checkersdto.PlayResponse{
		Summary: dto,
		Message: h.formatter.Move(dto),
	})
}

func (h *Handler) resign(ctx *fasthttp.RequestCtx) {
	var req checkersdto.RequestMeta
	if err := decodeBody(ctx, &req); err != nil {
		h.badRequest(ctx, err.Error())
		return
	}
	meta := metaFromBody(ctx, req)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}
	rctx, cancel := h.requestContext()
	defer cancel()
	state, err := h.service.Resign(rctx, meta)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	dto := checkerspresenter.ToDTOState(state)
	h.writeJSON(ctx, fasthttp.StatusOK, checkersdto.ResignResponse{
		State:   dto,
		Message: h.formatter.Resign(dto),
	})
}

func (h *Handler) board(ctx *fasthttp.RequestCtx) {
	meta := metaFromQuery(ctx)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}
	rctx, cancel := h.requestContext()
	defer cancel()
	state, err := h.service.Status(rctx, meta)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if len(state.BoardImage) == 0 {
		h.fail(ctx, errors.New("board image unavailable"))
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType(contentTypePNG)
	ctx.SetBody(state.BoardImage)
}

func (h *Handler) history(ctx *fasthttp.RequestCtx) {
	meta := metaFromQuery(ctx)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}
	limit, _ := strconv.Atoi(string(ctx.QueryArgs().Peek("limit")))
	rctx, cancel := h.requestContext()
	defer cancel()
	games, err := h.service.History(rctx, meta, limit)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	dto := checkerspresenter.ToDTOGames(games)
	h.writeJSON(ctx, fasthttp.StatusOK, checkersdto.HistoryResponse{
		Games:   dto,
		Message: h.formatter.History(dto),
	})
}

func (h *Handler) game(ctx *fasthttp.RequestCtx) {
	meta := metaFromQuery(ctx)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}
	id, err := strconv.ParseInt(string(ctx.QueryArgs().Peek("id")), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(ctx, "id must be a positive integer")
		return
	}
	rctx, cancel := h.requestContext()
	defer cancel()
	game, err := h.service.Game(rctx, meta, id)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, checkerspresenter.ToDTOGame(game))
}

func (h *Handler) profile(ctx *fasthttp.RequestCtx) {
	meta := metaFromQuery(ctx)
	if !validMeta(meta) {
		h.badRequest(ctx, "room and player are required")
		return
	}
	rctx, cancel := h.requestContext()
	defer cancel()
	profile, err := h.service.Profile(rctx, meta)
	if errors.Is(err, svc.ErrProfileNotFound) {
		profile, err = nil, nil
	}
	if err != nil {
		h.fail(ctx, err)
		return
	}
	dto := checkerspresenter.ToDTOProfile(profile)
	h.writeJSON(ctx, fasthttp.StatusOK, checkersdto.ProfileResponse{
		Profile: dto,
		Message: h.formatter.Profile(dto),
	})
}

func (h *Handler) badRequest(ctx *fasthttp.RequestCtx, msg string) {
	e := checkersdto.DomainError{Code: checkersdto.CodeBadRequest, Message: msg}
	h.writeJSON(ctx, fasthttp.StatusBadRequest, checkersdto.ErrorResponse{Error: e})
}

func (h *Handler) fail(ctx *fasthttp.RequestCtx, err error) {
	e := checkerspresenter.ToDomainError(err)
	status := statusFor(e)
	if status >= fasthttp.StatusInternalServerError {
		h.logger.Error("checkers_request_failed",
			zap.String("path", string(ctx.Path())),
			zap.Error(err),
		)
		// internal details stay in the log
		e.Message = ""
	}
	e.Message = firstNonEmpty(h.formatter.Error(e), e.Message)
	h.writeJSON(ctx, status, checkersdto.ErrorResponse{Error: e})
}

func statusFor(e checkersdto.DomainError) int {
	switch e.Code {
	case checkersdto.CodeSessionNotFound, checkersdto.CodeGameNotFound, checkersdto.CodeProfileNotFound:
		return fasthttp.StatusNotFound
	case checkersdto.CodeSessionInProgress, checkersdto.CodeGameOver:
		return fasthttp.StatusConflict
	case checkersdto.CodeInvalidMove, checkersdto.CodeNotSelectable:
		return fasthttp.StatusUnprocessableEntity
	case checkersdto.CodeRoomNotAllowed:
		return fasthttp.StatusForbidden
	case checkersdto.CodeBadRequest:
		return fasthttp.StatusBadRequest
	}
	if e.Retryable {
		return fasthttp.StatusServiceUnavailable
	}
	return fasthttp.StatusInternalServerError
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (h *Handler) writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("checkers_response_encode_failed", zap.Error(err))
		ctx.Error("internal error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(body)
}
