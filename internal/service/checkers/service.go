package checkers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	corecheckers "github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/domain"
	"github.com/park285/cheese-checkers/internal/service/cache"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound   = errors.New("checkers session not found")
	ErrSessionInProgress = errors.New("checkers session already in progress")
	ErrInvalidMove       = errors.New("invalid checkers move")
	ErrNotSelectable     = errors.New("no movable piece on that square")
	ErrGameNotFound      = errors.New("checkers game not found")
	ErrProfileNotFound   = errors.New("checkers profile not found")
	ErrRoomNotAllowed    = errors.New("checkers room not allowed")
)

const (
	defaultPlayerRating   = 1200
	computerRating        = 800
	kFactor               = 24
	profileCacheTTL       = 6 * time.Hour
	maxHistoryLimit       = 50
	playerLabelRuneLimit  = 24
	defaultHUDPlayerLabel = "Player"

	humanColor    = corecheckers.Black
	computerColor = corecheckers.Red
)

const (
	ResultWin  = "win"
	ResultLoss = "loss"

	MethodNoPieces = "no_pieces"
	MethodNoMoves  = "no_moves"
	MethodResign   = "resign"
)

// Opponent picks the reply for the computer side.
type Opponent interface {
	Choose(ctx context.Context, moves []*corecheckers.Move) (*corecheckers.Move, error)
}

type SessionMeta struct {
	SessionID string
	Room      string
	Sender    string
}

type sessionIdentity struct {
	SessionID  string
	RoomHash   string
	PlayerHash string
}

type Config struct {
	SessionTTL       time.Duration
	HistoryLimit     int
	AllowedRooms     []string
	MandatoryCapture bool
}

type Service struct {
	cache        *cache.CacheService
	repo         Repository
	renderer     BoardRenderer
	opponent     Opponent
	cfg          Config
	allowedRooms map[string]struct{}
	logger       *zap.Logger
}

type sessionPayload struct {
	SessionUUID string            `json:"session_uuid"`
	PlayerHash  string            `json:"player_hash"`
	RoomHash    string            `json:"room_hash"`
	PlayerName  string            `json:"player_name,omitempty"`
	Board       corecheckers.Grid `json:"board"`
	Turn        string            `json:"turn"`
	MoveCount   int               `json:"move_count"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type SessionState struct {
	SessionUUID      string
	PlayerHash       string
	RoomHash         string
	PlayerName       string
	Board            corecheckers.Grid
	Turn             corecheckers.Color
	MoveCount        int
	BlackPieces      int
	RedPieces        int
	Selectable       []corecheckers.Position
	Over             bool
	Winner           corecheckers.Color
	MandatoryCapture bool
	BoardImage       []byte
	StartedAt        time.Time
	UpdatedAt        time.Time
	RatingDelta      int
	Profile          *domain.CheckersProfile
}

type MoveSummary struct {
	State *SessionState
	// PendingComputerMove is a reply owed from an earlier call that failed
	// before the computer moved. It is played before anything else.
	PendingComputerMove *corecheckers.Move
	PlayerMove          *corecheckers.Move
	ComputerMove        *corecheckers.Move
	Finished            bool
	Result              string
	GameID              int64
	Profile             *domain.CheckersProfile
	RatingDelta         int
}

type OptionsResult struct {
	From         corecheckers.Position
	Destinations []corecheckers.Position
	BoardImage   []byte
}

func NewService(cacheSvc *cache.CacheService, repo Repository, renderer BoardRenderer, opponent Opponent, cfg Config, logger *zap.Logger) (*Service, error) {
	if cacheSvc == nil {
		return nil, fmt.Errorf("cache service is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkers repository is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("board renderer is required")
	}
	if opponent == nil {
		return nil, fmt.Errorf("computer opponent is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	allowedRooms := make(map[string]struct{})
	for _, room := range cfg.AllowedRooms {
		normalized := strings.ToLower(strings.TrimSpace(room))
		if normalized == "" {
			continue
		}
		allowedRooms[normalized] = struct{}{}
	}
	cfg.AllowedRooms = append([]string(nil), cfg.AllowedRooms...)

	return &Service{
		cache:        cacheSvc,
		repo:         repo,
		renderer:     renderer,
		opponent:     opponent,
		cfg:          cfg,
		allowedRooms: allowedRooms,
		logger:       logger,
	}, nil
}

func (s *Service) StartSession(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)

	existing, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		game, err := s.restoreGame(existing)
		if err != nil {
			return nil, err
		}
		pending, err := s.resumeComputerTurn(ctx, identity, meta, existing, game)
		if err != nil {
			return nil, err
		}
		switch {
		case pending != nil && pending.Finished:
			// the owed reply ended the old game; start a fresh one below
		case pending != nil:
			state := pending.State
			if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
				state.Profile = profile
			}
			return state, ErrSessionInProgress
		default:
			state := s.stateFromGame(existing, game)
			if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
				state.Profile = profile
			}
			s.applyPlayerName(state, existing, meta)
			s.attachBoardImage(ctx, state, game, RenderOptions{})
			return state, ErrSessionInProgress
		}
	}

	profile, err := s.fetchProfile(ctx, identity, true)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	game := corecheckers.NewGame(corecheckers.WithMandatoryCapture(s.cfg.MandatoryCapture))
	now := time.Now()
	payload := &sessionPayload{
		SessionUUID: uuid.NewString(),
		PlayerHash:  identity.PlayerHash,
		RoomHash:    identity.RoomHash,
		PlayerName:  normalizeHUDPlayerLabel(meta.Sender),
		Board:       game.Board().Save(),
		Turn:        game.Turn().String(),
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.saveSession(ctx, identity.SessionID, payload); err != nil {
		return nil, err
	}
	s.logger.Info("checkers_session_started",
		zap.String("session_uuid", payload.SessionUUID),
		zap.String("session_id", identity.SessionID),
	)

	state := s.stateFromGame(payload, game)
	s.applyPlayerName(state, payload, meta)
	s.attachBoardImage(ctx, state, game, RenderOptions{})
	state.Profile = profile
	return state, nil
}

func (s *Service) Status(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	payload, game, identity, pending, err := s.openSession(ctx, meta)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		if !pending.Finished {
			if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
				pending.State.Profile = profile
			}
		}
		return pending.State, nil
	}
	state := s.stateFromGame(payload, game)
	if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
		state.Profile = profile
	}
	s.applyPlayerName(state, payload, meta)
	s.attachBoardImage(ctx, state, game, RenderOptions{})
	return state, nil
}

// Options lists where the human piece on from can go.
func (s *Service) Options(ctx context.Context, meta SessionMeta, from corecheckers.Position) (*OptionsResult, error) {
	payload, game, _, pending, err := s.openSession(ctx, meta)
	if err != nil {
		return nil, err
	}
	if pending != nil && pending.Finished {
		return nil, corecheckers.ErrGameOver
	}
	if game.Over() || game.Turn() != humanColor || !containsPosition(game.Selectable(), from) {
		return nil, ErrNotSelectable
	}
	piece, _ := game.Board().PieceAt(from)
	result := &OptionsResult{
		From:         from,
		Destinations: game.Destinations(from),
	}
	state := s.stateFromGame(payload, game)
	s.applyPlayerName(state, payload, meta)
	s.attachBoardImage(ctx, state, game, RenderOptions{
		Selected:     piece.ID,
		Destinations: result.Destinations,
	})
	result.BoardImage = state.BoardImage
	return result, nil
}

// Play applies the human move from -> to (the longest capture chain when
// several connect the two squares) and lets the computer answer. When a
// computer reply was still owed, Play only delivers that reply: the human
// has not seen the resulting board yet, so from/to are not applied.
func (s *Service) Play(ctx context.Context, meta SessionMeta, from, to corecheckers.Position) (*MoveSummary, error) {
	payload, game, identity, pending, err := s.openSession(ctx, meta)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return pending, nil
	}
	if game.Over() {
		return nil, corecheckers.ErrGameOver
	}

	move, ok := game.LongestMove(from, to)
	if !ok {
		return nil, ErrInvalidMove
	}
	if err := game.ApplyMove(move); err != nil {
		s.logger.Debug("checkers_move_rejected", zap.String("move", move.String()), zap.Error(err))
		return nil, ErrInvalidMove
	}
	payload.MoveCount++
	summary := &MoveSummary{PlayerMove: move}
	lastMove := move

	if !game.Over() {
		reply, err := s.computerReply(ctx, game)
		if err != nil {
			// keep the human move; the reply is owed on the next open
			payload.Board = game.Board().Save()
			payload.Turn = game.Turn().String()
			payload.UpdatedAt = time.Now()
			// the reply may have failed on ctx itself; the save must not
			if saveErr := s.saveSession(context.WithoutCancel(ctx), identity.SessionID, payload); saveErr != nil {
				s.logger.Warn("checkers_session_save_failed", zap.Error(saveErr))
			}
			return nil, err
		}
		payload.MoveCount++
		summary.ComputerMove = reply
		lastMove = reply
	}

	return s.finishPlay(ctx, identity, meta, payload, game, summary, lastMove)
}

func (s *Service) finishPlay(ctx context.Context, identity sessionIdentity, meta SessionMeta, payload *sessionPayload, game *corecheckers.Game, summary *MoveSummary, last *corecheckers.Move) (*MoveSummary, error) {
	payload.Board = game.Board().Save()
	payload.Turn = game.Turn().String()
	payload.UpdatedAt = time.Now()

	state := s.stateFromGame(payload, game)
	s.applyPlayerName(state, payload, meta)
	opts := RenderOptions{}
	if last != nil {
		opts.LastMove = last.Positions
		opts.Captured = last.Captures
	}
	s.attachBoardImage(ctx, state, game, opts)
	summary.State = state

	if !game.Over() {
		if err := s.saveSession(ctx, identity.SessionID, payload); err != nil {
			return nil, err
		}
		return summary, nil
	}

	winner, _ := game.Winner()
	result := ResultLoss
	if winner == humanColor {
		result = ResultWin
	}
	method := MethodNoMoves
	if game.Board().Count(winner.Opponent()) == 0 {
		method = MethodNoPieces
	}
	gameID, profile, delta, err := s.persistFinishedGame(ctx, identity, payload, game, result, method)
	if err != nil {
		return nil, err
	}
	summary.Finished = true
	summary.Result = result
	summary.GameID = gameID
	summary.Profile = profile
	summary.RatingDelta = delta
	state.Profile = profile
	state.RatingDelta = delta

	if err := s.deleteSession(ctx, identity.SessionID); err != nil {
		s.logger.Warn("failed to delete finished checkers session", zap.Error(err))
	}
	return summary, nil
}

func (s *Service) computerReply(ctx context.Context, game *corecheckers.Game) (*corecheckers.Move, error) {
	reply, err := s.opponent.Choose(ctx, game.LegalMoves())
	if err != nil {
		return nil, fmt.Errorf("computer move: %w", err)
	}
	if err := game.ApplyMove(reply); err != nil {
		return nil, fmt.Errorf("apply computer move: %w", err)
	}
	return reply, nil
}

func (s *Service) Resign(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	payload, game, identity, pending, err := s.openSession(ctx, meta)
	if err != nil {
		return nil, err
	}
	if pending != nil && pending.Finished {
		// the owed reply already ended the game
		return pending.State, nil
	}
	payload.UpdatedAt = time.Now()

	state := s.stateFromGame(payload, game)
	state.Over = true
	state.Winner = computerColor
	s.applyPlayerName(state, payload, meta)
	s.attachBoardImage(ctx, state, game, RenderOptions{})

	gameID, profile, delta, err := s.persistFinishedGame(ctx, identity, payload, game, ResultLoss, MethodResign)
	if err != nil {
		return nil, err
	}
	state.Profile = profile
	state.RatingDelta = delta

	if err := s.deleteSession(ctx, identity.SessionID); err != nil {
		s.logger.Warn("failed to delete checkers session after resignation", zap.Error(err))
	}
	if gameID == 0 {
		s.logger.Warn("resigned checkers game did not persist with id")
	}
	return state, nil
}

func (s *Service) History(ctx context.Context, meta SessionMeta, limit int) ([]*domain.CheckersGame, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	identity := deriveIdentity(meta)
	return s.repo.GetRecentGames(ctx, identity.PlayerHash, limit)
}

func (s *Service) Game(ctx context.Context, meta SessionMeta, id int64) (*domain.CheckersGame, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	game, err := s.repo.GetGame(ctx, id, identity.PlayerHash)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (s *Service) Profile(ctx context.Context, meta SessionMeta) (*domain.CheckersProfile, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	return s.fetchProfile(ctx, deriveIdentity(meta), true)
}

// Ping checks that the session store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

// openSession loads the caller's session. If the computer still owes a
// reply it is played and stored first; the returned summary describes it
// and is nil otherwise. A finished summary means the session is gone.
func (s *Service) openSession(ctx context.Context, meta SessionMeta) (*sessionPayload, *corecheckers.Game, sessionIdentity, *MoveSummary, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, nil, sessionIdentity{}, nil, err
	}
	identity := deriveIdentity(meta)
	payload, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, nil, identity, nil, err
	}
	if payload == nil {
		return nil, nil, identity, nil, ErrSessionNotFound
	}
	game, err := s.restoreGame(payload)
	if err != nil {
		return nil, nil, identity, nil, err
	}
	pending, err := s.resumeComputerTurn(ctx, identity, meta, payload, game)
	if err != nil {
		return nil, nil, identity, nil, err
	}
	return payload, game, identity, pending, nil
}

func (s *Service) resumeComputerTurn(ctx context.Context, identity sessionIdentity, meta SessionMeta, payload *sessionPayload, game *corecheckers.Game) (*MoveSummary, error) {
	if game.Over() || game.Turn() != computerColor {
		return nil, nil
	}
	reply, err := s.computerReply(ctx, game)
	if err != nil {
		return nil, err
	}
	payload.MoveCount++
	s.logger.Info("checkers_pending_reply_played",
		zap.String("session_uuid", payload.SessionUUID),
		zap.String("move", reply.String()),
	)
	return s.finishPlay(ctx, identity, meta, payload, game, &MoveSummary{PendingComputerMove: reply}, reply)
}

func (s *Service) ensureRoomAllowed(meta SessionMeta) error {
	if len(s.allowedRooms) == 0 {
		return nil
	}
	room := strings.ToLower(strings.TrimSpace(meta.Room))
	if room == "" {
		room = "unknown-room"
	}
	if _, ok := s.allowedRooms[room]; ok {
		return nil
	}
	s.logger.Info("checkers room access denied",
		zap.String("room", room),
		zap.String("sender", strings.TrimSpace(meta.Sender)),
	)
	return ErrRoomNotAllowed
}

func (s *Service) sessionKey(sessionID string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(sessionID)))
	return "checkers:sessions:" + hex.EncodeToString(hash[:])
}

func (s *Service) profileCacheKey(identity sessionIdentity) string {
	return "checkers:profile:" + identity.PlayerHash + ":" + identity.RoomHash
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (*sessionPayload, error) {
	payload := &sessionPayload{}
	if err := s.cache.Get(ctx, s.sessionKey(sessionID), payload); err != nil {
		return nil, err
	}
	if payload.SessionUUID == "" {
		return nil, nil
	}
	return payload, nil
}

func (s *Service) saveSession(ctx context.Context, sessionID string, payload *sessionPayload) error {
	if payload == nil {
		return fmt.Errorf("cannot save nil checkers session payload")
	}
	payload.UpdatedAt = time.Now()
	return s.cache.Set(ctx, s.sessionKey(sessionID), payload, s.cfg.SessionTTL)
}

func (s *Service) deleteSession(ctx context.Context, sessionID string) error {
	return s.cache.Del(ctx, s.sessionKey(sessionID))
}

func (s *Service) restoreGame(payload *sessionPayload) (*corecheckers.Game, error) {
	board, err := corecheckers.LoadBoard(payload.Board)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", payload.SessionUUID, err)
	}
	turn, ok := corecheckers.ParseColor(payload.Turn)
	if !ok {
		return nil, fmt.Errorf("restore session %s: unknown turn %q", payload.SessionUUID, payload.Turn)
	}
	return corecheckers.NewGameFromBoard(board, turn, corecheckers.WithMandatoryCapture(s.cfg.MandatoryCapture))
}

func (s *Service) stateFromGame(payload *sessionPayload, game *corecheckers.Game) *SessionState {
	board := game.Board()
	state := &SessionState{
		SessionUUID:      payload.SessionUUID,
		PlayerHash:       payload.PlayerHash,
		RoomHash:         payload.RoomHash,
		PlayerName:       payload.PlayerName,
		Board:            board.Save(),
		Turn:             game.Turn(),
		MoveCount:        payload.MoveCount,
		BlackPieces:      board.Count(corecheckers.Black),
		RedPieces:        board.Count(corecheckers.Red),
		Over:             game.Over(),
		MandatoryCapture: game.MandatoryCapture(),
		StartedAt:        payload.StartedAt,
		UpdatedAt:        payload.UpdatedAt,
	}
	if winner, ok := game.Winner(); ok {
		state.Winner = winner
	}
	if !game.Over() && game.Turn() == humanColor {
		state.Selectable = game.Selectable()
	}
	return state
}

func normalizeHUDPlayerLabel(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return ""
	}
	runes := []rune(cleaned)
	if len(runes) > playerLabelRuneLimit {
		truncated := strings.TrimSpace(string(runes[:playerLabelRuneLimit]))
		if truncated == "" {
			return ""
		}
		return truncated + "..."
	}
	return cleaned
}

func (s *Service) applyPlayerName(state *SessionState, payload *sessionPayload, meta SessionMeta) {
	label := ""
	if payload != nil {
		label = normalizeHUDPlayerLabel(payload.PlayerName)
	}
	if label == "" {
		label = normalizeHUDPlayerLabel(meta.Sender)
	}
	if label == "" {
		label = defaultHUDPlayerLabel
	}
	state.PlayerName = label
	if payload != nil {
		payload.PlayerName = label
	}
}

func (s *Service) attachBoardImage(ctx context.Context, state *SessionState, game *corecheckers.Game, opts RenderOptions) {
	if state == nil || game == nil {
		return
	}
	opts.HUDHeader = fmt.Sprintf("%s vs Computer", state.PlayerName)
	switch {
	case state.Over && state.Winner == humanColor:
		opts.HUDTurn = "You won"
	case state.Over:
		opts.HUDTurn = "You lost"
	default:
		opts.HUDTurn = fmt.Sprintf("%s to move - %d", titleColor(state.Turn), state.MoveCount/2+1)
	}
	opts.HUDScore = fmt.Sprintf("Black %d : Red %d", state.BlackPieces, state.RedPieces)

	data, err := s.renderer.RenderPNG(ctx, game.Board(), opts)
	if err != nil {
		s.logger.Warn("failed to render checkers board image", zap.Error(err))
		return
	}
	state.BoardImage = data
}

func titleColor(c corecheckers.Color) string {
	name := c.String()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func containsPosition(list []corecheckers.Position, pos corecheckers.Position) bool {
	for _, p := range list {
		if p == pos {
			return true
		}
	}
	return false
}

func (s *Service) persistFinishedGame(ctx context.Context, identity sessionIdentity, payload *sessionPayload, game *corecheckers.Game, result, method string) (int64, *domain.CheckersProfile, int, error) {
	now := time.Now()
	board := game.Board()
	record := &domain.CheckersGame{
		SessionUUID:  payload.SessionUUID,
		PlayerHash:   identity.PlayerHash,
		RoomHash:     identity.RoomHash,
		Result:       result,
		ResultMethod: method,
		FinalBoard:   board.Save(),
		BlackPieces:  board.Count(corecheckers.Black),
		RedPieces:    board.Count(corecheckers.Red),
		MoveCount:    payload.MoveCount,
		StartedAt:    payload.StartedAt,
		EndedAt:      now,
		Duration:     now.Sub(payload.StartedAt),
	}

	gameID, err := s.repo.InsertGame(ctx, record)
	if err != nil {
		if errors.Is(err, ErrDuplicateGame) {
			existing, fetchErr := s.repo.GetGameBySession(ctx, payload.SessionUUID, identity.PlayerHash)
			if fetchErr != nil || existing == nil {
				return 0, nil, 0, err
			}
			profile, profErr := s.fetchProfile(ctx, identity, true)
			if profErr != nil && !errors.Is(profErr, ErrProfileNotFound) {
				return existing.ID, nil, 0, profErr
			}
			return existing.ID, profile, 0, nil
		}
		return 0, nil, 0, err
	}
	s.logger.Info("checkers_game_recorded",
		zap.Int64("game_id", gameID),
		zap.String("session_uuid", payload.SessionUUID),
		zap.String("result", result),
		zap.String("method", method),
		zap.Int("move_count", payload.MoveCount),
	)

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return gameID, nil, 0, err
	}
	profile, delta := applyGameResult(profile, identity, result, now)
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return gameID, nil, 0, err
	}
	s.cacheProfile(ctx, identity, profile)
	return gameID, profile, delta, nil
}

func (s *Service) fetchProfile(ctx context.Context, identity sessionIdentity, allowCache bool) (*domain.CheckersProfile, error) {
	if allowCache {
		cached := &domain.CheckersProfile{}
		if err := s.cache.Get(ctx, s.profileCacheKey(identity), cached); err != nil {
			s.logger.Warn("checkers profile cache read failed", zap.Error(err))
		} else if cached.PlayerHash != "" {
			return cached, nil
		}
	}
	stored, err := s.repo.GetProfile(ctx, identity.PlayerHash, identity.RoomHash)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrProfileNotFound
	}
	s.cacheProfile(ctx, identity, stored)
	return stored, nil
}

func (s *Service) cacheProfile(ctx context.Context, identity sessionIdentity, profile *domain.CheckersProfile) {
	if profile == nil {
		return
	}
	if err := s.cache.Set(ctx, s.profileCacheKey(identity), profile, profileCacheTTL); err != nil {
		s.logger.Warn("failed to cache checkers profile", zap.Error(err))
	}
}

func deriveIdentity(meta SessionMeta) sessionIdentity {
	room := strings.ToLower(strings.TrimSpace(meta.Room))
	sender := strings.ToLower(strings.TrimSpace(meta.Sender))
	sessionID := strings.ToLower(strings.TrimSpace(meta.SessionID))
	if sessionID == "" {
		sessionID = room + ":" + sender
	}
	return sessionIdentity{
		SessionID:  sessionID,
		RoomHash:   hashString(room),
		PlayerHash: hashString(room + ":" + sender),
	}
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func applyGameResult(profile *domain.CheckersProfile, identity sessionIdentity, result string, endedAt time.Time) (*domain.CheckersProfile, int) {
	if profile == nil {
		profile = &domain.CheckersProfile{
			PlayerHash: identity.PlayerHash,
			RoomHash:   identity.RoomHash,
			Rating:     defaultPlayerRating,
			CreatedAt:  endedAt,
		}
	}
	prevRating := profile.Rating

	profile.GamesPlayed++
	profile.LastPlayedAt = endedAt
	profile.UpdatedAt = endedAt

	score := 0.0
	if result == ResultWin {
		profile.Wins++
		score = 1.0
	} else {
		profile.Losses++
	}
	if profile.StreakType == result {
		profile.Streak++
	} else {
		profile.Streak = 1
		profile.StreakType = result
	}

	expected := 1 / (1 + math.Pow(10, float64(computerRating-profile.Rating)/400))
	profile.Rating = int(math.Round(float64(profile.Rating) + kFactor*(score-expected)))
	return profile, profile.Rating - prevRating
}
