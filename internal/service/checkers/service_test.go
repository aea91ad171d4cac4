package checkers

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	corecheckers "github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/service/cache"
	"github.com/redis/go-redis/v9"
)

// firstMove answers with the first legal move. While failures is positive
// each call fails instead, like a reply cut off by a deadline.
type firstMove struct{ calls, failures int }

func (f *firstMove) Choose(_ context.Context, moves []*corecheckers.Move) (*corecheckers.Move, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, context.DeadlineExceeded
	}
	if len(moves) == 0 {
		return nil, errors.New("no moves")
	}
	return moves[0], nil
}

type stubRenderer struct{}

func (stubRenderer) RenderPNG(context.Context, *corecheckers.Board, RenderOptions) ([]byte, error) {
	return []byte("png"), nil
}

func newTestService(t *testing.T, cfg Config) (*Service, *firstMove, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}
	opp := &firstMove{}
	cacheSvc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	svc, err := NewService(cacheSvc, NewMemoryRepository(), stubRenderer{}, opp, cfg, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, opp, mr
}

var alice = SessionMeta{Room: "room-a", Sender: "Alice"}

func seedSession(t *testing.T, s *Service, meta SessionMeta, grid corecheckers.Grid, turn corecheckers.Color) {
	t.Helper()
	identity := deriveIdentity(meta)
	payload := &sessionPayload{
		SessionUUID: "seeded-" + meta.Sender,
		PlayerHash:  identity.PlayerHash,
		RoomHash:    identity.RoomHash,
		Board:       grid,
		Turn:        turn.String(),
		StartedAt:   time.Now().Add(-time.Minute),
	}
	if err := s.saveSession(context.Background(), identity.SessionID, payload); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestNewServiceValidates(t *testing.T) {
	if _, err := NewService(nil, NewMemoryRepository(), stubRenderer{}, &firstMove{}, Config{SessionTTL: time.Hour}, nil); err == nil {
		t.Fatalf("expected error without cache")
	}
	svc, _, _ := newTestService(t, Config{HistoryLimit: 500})
	if svc.cfg.HistoryLimit != 10 {
		t.Fatalf("history limit not clamped: %d", svc.cfg.HistoryLimit)
	}
}

func TestStartSessionAndResume(t *testing.T) {
	svc, _, mr := newTestService(t, Config{})
	ctx := context.Background()

	state, err := svc.StartSession(ctx, alice)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if state.Turn != corecheckers.Black || state.BlackPieces != 12 || state.RedPieces != 12 {
		t.Fatalf("unexpected initial state: %+v", state)
	}
	if len(state.Selectable) != 4 {
		t.Fatalf("expected 4 selectable pieces, got %v", state.Selectable)
	}
	if len(state.BoardImage) == 0 || state.PlayerName != "Alice" {
		t.Fatalf("missing image or name: %q", state.PlayerName)
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected one session key, got %v", mr.Keys())
	}

	again, err := svc.StartSession(ctx, alice)
	if !errors.Is(err, ErrSessionInProgress) {
		t.Fatalf("expected ErrSessionInProgress, got %v", err)
	}
	if again.SessionUUID != state.SessionUUID {
		t.Fatalf("resumed a different session: %s vs %s", again.SessionUUID, state.SessionUUID)
	}
}

func TestStatusWithoutSession(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	if _, err := svc.Status(context.Background(), alice); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()
	if _, err := svc.StartSession(ctx, alice); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	res, err := svc.Options(ctx, alice, corecheckers.Pos(2, 5))
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	want := []corecheckers.Position{corecheckers.Pos(1, 4), corecheckers.Pos(3, 4)}
	if len(res.Destinations) != len(want) || res.Destinations[0] != want[0] || res.Destinations[1] != want[1] {
		t.Fatalf("destinations = %v, want %v", res.Destinations, want)
	}

	for _, pos := range []corecheckers.Position{{X: 1, Y: 6}, {X: 1, Y: 2}, {X: 0, Y: 0}, {X: -1, Y: 9}} {
		if _, err := svc.Options(ctx, alice, pos); !errors.Is(err, ErrNotSelectable) {
			t.Fatalf("Options(%v): expected ErrNotSelectable, got %v", pos, err)
		}
	}
}

func TestPlayAppliesHumanAndComputerMoves(t *testing.T) {
	svc, opp, _ := newTestService(t, Config{})
	ctx := context.Background()
	if _, err := svc.StartSession(ctx, alice); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	summary, err := svc.Play(ctx, alice, corecheckers.Pos(2, 5), corecheckers.Pos(3, 4))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if summary.Finished || summary.PlayerMove == nil || summary.ComputerMove == nil || opp.calls != 1 {
		t.Fatalf("unexpected summary: %+v (calls=%d)", summary, opp.calls)
	}
	if summary.State.Turn != corecheckers.Black || summary.State.MoveCount != 2 {
		t.Fatalf("turn=%s moves=%d", summary.State.Turn, summary.State.MoveCount)
	}

	status, err := svc.Status(ctx, alice)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Board[3][4] != 1 || status.Board[2][5] != 0 {
		t.Fatalf("human move not persisted: %v", status.Board)
	}
	if status.Board != summary.State.Board {
		t.Fatalf("stored board differs from returned board")
	}
}

func TestPlayRejectsIllegalMove(t *testing.T) {
	svc, opp, _ := newTestService(t, Config{})
	ctx := context.Background()
	start, err := svc.StartSession(ctx, alice)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := svc.Play(ctx, alice, corecheckers.Pos(2, 5), corecheckers.Pos(2, 4)); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
	if opp.calls != 0 {
		t.Fatalf("computer should not move after a rejected move")
	}
	status, err := svc.Status(ctx, alice)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Board != start.Board {
		t.Fatalf("board changed after rejected move")
	}
}

func TestWinningCaptureFinishesGame(t *testing.T) {
	svc, opp, _ := newTestService(t, Config{})
	ctx := context.Background()

	var grid corecheckers.Grid
	grid[2][5] = 1
	grid[3][4] = 2
	seedSession(t, svc, alice, grid, corecheckers.Black)

	summary, err := svc.Play(ctx, alice, corecheckers.Pos(2, 5), corecheckers.Pos(4, 3))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !summary.Finished || summary.Result != ResultWin || summary.GameID == 0 {
		t.Fatalf("expected recorded win, got %+v", summary)
	}
	if opp.calls != 0 {
		t.Fatalf("computer moved after the game ended")
	}
	if summary.Profile == nil || summary.Profile.Wins != 1 || summary.RatingDelta <= 0 {
		t.Fatalf("unexpected profile %+v delta %d", summary.Profile, summary.RatingDelta)
	}

	if _, err := svc.Status(ctx, alice); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session should be deleted, got %v", err)
	}
	history, err := svc.History(ctx, alice, 0)
	if err != nil || len(history) != 1 {
		t.Fatalf("History: %v %v", history, err)
	}
	g := history[0]
	if g.ResultMethod != MethodNoPieces || g.RedPieces != 0 || g.BlackPieces != 1 || g.FinalBoard[4][3] != 1 {
		t.Fatalf("unexpected record %+v", g)
	}
	if _, err := svc.Game(ctx, alice, g.ID); err != nil {
		t.Fatalf("Game: %v", err)
	}
	if _, err := svc.Game(ctx, SessionMeta{Room: "room-a", Sender: "bob"}, g.ID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("other player should not see the game, got %v", err)
	}
}

func TestComputerReplyEndsGame(t *testing.T) {
	cases := []struct {
		name   string
		grid   func(*corecheckers.Grid)
		from   corecheckers.Position
		to     corecheckers.Position
		method string
		black  int
	}{
		{
			// red (2,1) jumps the man that just stepped next to it
			name:   "last piece captured",
			grid:   func(g *corecheckers.Grid) { g[4][3] = 1; g[2][1] = 2 },
			from:   corecheckers.Pos(4, 3),
			to:     corecheckers.Pos(3, 2),
			method: MethodNoPieces,
			black:  0,
		},
		{
			// black walks into the corner behind red (1,0); red answers elsewhere
			name:   "black left without moves",
			grid:   func(g *corecheckers.Grid) { g[1][2] = 1; g[1][0] = 2; g[0][5] = 2 },
			from:   corecheckers.Pos(1, 2),
			to:     corecheckers.Pos(0, 1),
			method: MethodNoMoves,
			black:  1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, opp, _ := newTestService(t, Config{MandatoryCapture: true})
			ctx := context.Background()
			var grid corecheckers.Grid
			tc.grid(&grid)
			seedSession(t, svc, alice, grid, corecheckers.Black)

			summary, err := svc.Play(ctx, alice, tc.from, tc.to)
			if err != nil {
				t.Fatalf("Play: %v", err)
			}
			if !summary.Finished || summary.Result != ResultLoss || summary.ComputerMove == nil || opp.calls != 1 {
				t.Fatalf("expected loss after the computer reply, got %+v", summary)
			}
			if !summary.State.Over || summary.State.Winner != corecheckers.Red || summary.State.BlackPieces != tc.black {
				t.Fatalf("unexpected final state %+v", summary.State)
			}
			if summary.Profile == nil || summary.Profile.Losses != 1 || summary.RatingDelta >= 0 {
				t.Fatalf("unexpected profile %+v delta %d", summary.Profile, summary.RatingDelta)
			}
			history, err := svc.History(ctx, alice, 0)
			if err != nil || len(history) != 1 {
				t.Fatalf("History: %v %v", history, err)
			}
			if history[0].Result != ResultLoss || history[0].ResultMethod != tc.method {
				t.Fatalf("record = %s/%s, want %s/%s", history[0].Result, history[0].ResultMethod, ResultLoss, tc.method)
			}
			if _, err := svc.Status(ctx, alice); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("session should be deleted, got %v", err)
			}
		})
	}
}

func TestStatusPlaysOwedReply(t *testing.T) {
	svc, opp, _ := newTestService(t, Config{})
	ctx := context.Background()
	if _, err := svc.StartSession(ctx, alice); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	opp.failures = 1
	if _, err := svc.Play(ctx, alice, corecheckers.Pos(2, 5), corecheckers.Pos(3, 4)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the reply to fail, got %v", err)
	}

	state, err := svc.Status(ctx, alice)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Turn != corecheckers.Black || len(state.Selectable) == 0 || state.MoveCount != 2 {
		t.Fatalf("owed reply not played: turn=%s selectable=%v moves=%d", state.Turn, state.Selectable, state.MoveCount)
	}
	if state.Board[3][4] != 1 || state.RedPieces != 12 {
		t.Fatalf("human move lost: %v", state.Board)
	}
	if _, err := svc.Options(ctx, alice, corecheckers.Pos(0, 5)); err != nil {
		t.Fatalf("Options after recovery: %v", err)
	}

	again, err := svc.Status(ctx, alice)
	if err != nil || again.Board != state.Board || again.MoveCount != 2 {
		t.Fatalf("recovered reply not stored: %+v %v", again, err)
	}
	if opp.calls != 2 {
		t.Fatalf("computer asked %d times, want 2", opp.calls)
	}
}

func TestPlayDeliversOwedReplyFirst(t *testing.T) {
	svc, opp, _ := newTestService(t, Config{})
	ctx := context.Background()
	if _, err := svc.StartSession(ctx, alice); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	opp.failures = 1
	if _, err := svc.Play(ctx, alice, corecheckers.Pos(2, 5), corecheckers.Pos(3, 4)); err == nil {
		t.Fatalf("expected the reply to fail")
	}

	summary, err := svc.Play(ctx, alice, corecheckers.Pos(0, 5), corecheckers.Pos(1, 4))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if summary.PendingComputerMove == nil || summary.PlayerMove != nil || summary.ComputerMove != nil {
		t.Fatalf("expected only the owed reply, got %+v", summary)
	}
	if summary.State.Turn != corecheckers.Black || summary.State.Board[0][5] != 1 || summary.State.Board[1][4] != 0 {
		t.Fatalf("human move applied on an unseen board: %v", summary.State.Board)
	}

	summary, err = svc.Play(ctx, alice, corecheckers.Pos(0, 5), corecheckers.Pos(1, 4))
	if err != nil {
		t.Fatalf("resent Play: %v", err)
	}
	if summary.PendingComputerMove != nil || summary.PlayerMove == nil || summary.ComputerMove == nil {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.State.MoveCount != 4 || summary.State.Board[1][4] != 1 {
		t.Fatalf("resent move not applied: %+v", summary.State)
	}
}

func TestOwedReplyThatEndsGameIsRecorded(t *testing.T) {
	svc, opp, _ := newTestService(t, Config{MandatoryCapture: true})
	ctx := context.Background()
	var grid corecheckers.Grid
	grid[4][3] = 1
	grid[2][1] = 2
	seedSession(t, svc, alice, grid, corecheckers.Black)

	opp.failures = 1
	if _, err := svc.Play(ctx, alice, corecheckers.Pos(4, 3), corecheckers.Pos(3, 2)); err == nil {
		t.Fatalf("expected the reply to fail")
	}
	if _, err := svc.Options(ctx, alice, corecheckers.Pos(4, 3)); !errors.Is(err, corecheckers.ErrGameOver) {
		t.Fatalf("expected ErrGameOver once the owed reply is played, got %v", err)
	}
	if _, err := svc.Status(ctx, alice); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("finished session should be deleted, got %v", err)
	}
	history, err := svc.History(ctx, alice, 0)
	if err != nil || len(history) != 1 || history[0].ResultMethod != MethodNoPieces {
		t.Fatalf("History: %+v %v", history, err)
	}
}

func TestResignRecordsLoss(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()
	if _, err := svc.Profile(ctx, alice); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.StartSession(ctx, alice); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	state, err := svc.Resign(ctx, alice)
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if !state.Over || state.Winner != corecheckers.Red || state.Profile == nil || state.Profile.Losses != 1 {
		t.Fatalf("unexpected resign state %+v", state)
	}
	if state.RatingDelta >= 0 {
		t.Fatalf("a loss should lower the rating, delta %d", state.RatingDelta)
	}
	profile, err := svc.Profile(ctx, alice)
	if err != nil || profile.GamesPlayed != 1 || profile.StreakType != ResultLoss {
		t.Fatalf("Profile: %+v %v", profile, err)
	}
	if _, err := svc.Resign(ctx, alice); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second resign: expected ErrSessionNotFound, got %v", err)
	}
}

func TestMandatoryCaptureSession(t *testing.T) {
	svc, _, _ := newTestService(t, Config{MandatoryCapture: true})
	ctx := context.Background()

	var grid corecheckers.Grid
	grid[2][5] = 1
	grid[3][4] = 2
	grid[6][7] = 1
	grid[7][0] = 2
	seedSession(t, svc, alice, grid, corecheckers.Black)

	state, err := svc.Status(ctx, alice)
	if err != nil || !state.MandatoryCapture || len(state.Selectable) != 1 || state.Selectable[0] != corecheckers.Pos(2, 5) {
		t.Fatalf("Status: %+v %v", state, err)
	}
	if _, err := svc.Options(ctx, alice, corecheckers.Pos(6, 7)); !errors.Is(err, ErrNotSelectable) {
		t.Fatalf("non-capturing piece should not be selectable, got %v", err)
	}
	if _, err := svc.Play(ctx, alice, corecheckers.Pos(6, 7), corecheckers.Pos(5, 6)); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
}

func TestRoomAllowList(t *testing.T) {
	svc, _, _ := newTestService(t, Config{AllowedRooms: []string{" Room-A "}})
	ctx := context.Background()
	if _, err := svc.StartSession(ctx, alice); err != nil {
		t.Fatalf("allowed room rejected: %v", err)
	}
	other := SessionMeta{Room: "room-b", Sender: "Alice"}
	if _, err := svc.StartSession(ctx, other); !errors.Is(err, ErrRoomNotAllowed) {
		t.Fatalf("expected ErrRoomNotAllowed, got %v", err)
	}
	if _, err := svc.History(ctx, other, 5); !errors.Is(err, ErrRoomNotAllowed) {
		t.Fatalf("expected ErrRoomNotAllowed for history, got %v", err)
	}
}

func TestNormalizeHUDPlayerLabel(t *testing.T) {
	cases := map[string]string{
		"":                                   "",
		"  Alice \n Smith ":                  "Alice Smith",
		"abcdefghijklmnopqrstuvwxyz0123":     "abcdefghijklmnopqrstuvwx...",
	}
	for in, want := range cases {
		if got := normalizeHUDPlayerLabel(in); got != want {
			t.Fatalf("normalizeHUDPlayerLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
