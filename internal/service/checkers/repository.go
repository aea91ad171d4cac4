package checkers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/domain"
	"github.com/park285/cheese-checkers/migrations"
)

var ErrDuplicateGame = errors.New("checkers game already exists")

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Repository interface {
	InsertGame(ctx context.Context, game *domain.CheckersGame) (int64, error)
	GetRecentGames(ctx context.Context, playerHash string, limit int) ([]*domain.CheckersGame, error)
	GetGame(ctx context.Context, id int64, playerHash string) (*domain.CheckersGame, error)
	GetGameBySession(ctx context.Context, sessionUUID string, playerHash string) (*domain.CheckersGame, error)
	GetProfile(ctx context.Context, playerHash string, roomHash string) (*domain.CheckersProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.CheckersProfile) error
}

type repository struct {
	db     *sql.DB
	driver string
}

// NewRepository wraps db. Queries are written with ? placeholders and
// rebound to $n for postgres.
func NewRepository(db *sql.DB, driver string) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return &repository{db: db, driver: driver}, nil
}

// Migrate creates the checkers tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	schema, err := migrations.Schema(driver)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply checkers schema: %w", err)
	}
	return nil
}

func (r *repository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

const gameColumns = `
			id,
			session_uuid,
			player_hash,
			room_hash,
			result,
			result_method,
			final_board,
			black_pieces,
			red_pieces,
			move_count,
			started_at,
			ended_at,
			duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.CheckersGame, error) {
	var (
		game       domain.CheckersGame
		boardJSON  []byte
		durationMS sql.NullInt64
	)
	if err := row.Scan(
		&game.ID,
		&game.SessionUUID,
		&game.PlayerHash,
		&game.RoomHash,
		&game.Result,
		&game.ResultMethod,
		&boardJSON,
		&game.BlackPieces,
		&game.RedPieces,
		&game.MoveCount,
		&game.StartedAt,
		&game.EndedAt,
		&durationMS,
	); err != nil {
		return nil, err
	}
	if durationMS.Valid {
		game.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	if err := json.Unmarshal(boardJSON, &game.FinalBoard); err != nil {
		return nil, fmt.Errorf("unmarshal final_board: %w", err)
	}
	return &game, nil
}

func (r *repository) InsertGame(ctx context.Context, game *domain.CheckersGame) (int64, error) {
	if game == nil {
		return 0, fmt.Errorf("nil checkers game payload")
	}

	board, err := json.Marshal(game.FinalBoard)
	if err != nil {
		return 0, fmt.Errorf("marshal final_board: %w", err)
	}

	const query = `
		INSERT INTO checkers_games (
			session_uuid,
			player_hash,
			room_hash,
			result,
			result_method,
			final_board,
			black_pieces,
			red_pieces,
			move_count,
			started_at,
			ended_at,
			duration_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(
		ctx,
		r.rebind(query),
		game.SessionUUID,
		game.PlayerHash,
		game.RoomHash,
		game.Result,
		game.ResultMethod,
		string(board),
		game.BlackPieces,
		game.RedPieces,
		game.MoveCount,
		game.StartedAt,
		game.EndedAt,
		game.Duration.Milliseconds(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert checkers game: %w", err)
	}
	return id.Int64, nil
}

func (r *repository) GetRecentGames(ctx context.Context, playerHash string, limit int) ([]*domain.CheckersGame, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + gameColumns + `
		FROM checkers_games
		WHERE player_hash = ?
		ORDER BY ended_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), playerHash, limit)
	if err != nil {
		return nil, fmt.Errorf("select checkers games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.CheckersGame, 0, limit)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkers game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkers games: %w", err)
	}
	return games, nil
}

func (r *repository) GetGame(ctx context.Context, id int64, playerHash string) (*domain.CheckersGame, error) {
	query := `SELECT` + gameColumns + `
		FROM checkers_games
		WHERE id = ? AND player_hash = ?`

	game, err := scanGame(r.db.QueryRowContext(ctx, r.rebind(query), id, playerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers game: %w", err)
	}
	return game, nil
}

func (r *repository) GetGameBySession(ctx context.Context, sessionUUID string, playerHash string) (*domain.CheckersGame, error) {
	query := `SELECT` + gameColumns + `
		FROM checkers_games
		WHERE session_uuid = ? AND player_hash = ?
		ORDER BY ended_at DESC
		LIMIT 1`

	game, err := scanGame(r.db.QueryRowContext(ctx, r.rebind(query), sessionUUID, playerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers game by session: %w", err)
	}
	return game, nil
}

func (r *repository) GetProfile(ctx context.Context, playerHash string, roomHash string) (*domain.CheckersProfile, error) {
	const query = `
		SELECT
			player_hash,
			room_hash,
			rating,
			games_played,
			wins,
			losses,
			streak,
			streak_type,
			last_played_at,
			updated_at,
			created_at
		FROM checkers_profiles
		WHERE player_hash = ? AND room_hash = ?
		LIMIT 1`

	var profile domain.CheckersProfile
	err := r.db.QueryRowContext(ctx, r.rebind(query), playerHash, roomHash).Scan(
		&profile.PlayerHash,
		&profile.RoomHash,
		&profile.Rating,
		&profile.GamesPlayed,
		&profile.Wins,
		&profile.Losses,
		&profile.Streak,
		&profile.StreakType,
		&profile.LastPlayedAt,
		&profile.UpdatedAt,
		&profile.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers profile: %w", err)
	}
	return &profile, nil
}

func (r *repository) UpsertProfile(ctx context.Context, profile *domain.CheckersProfile) error {
	if profile == nil {
		return fmt.Errorf("nil checkers profile payload")
	}
	const query = `
		INSERT INTO checkers_profiles (
			player_hash,
			room_hash,
			rating,
			games_played,
			wins,
			losses,
			streak,
			streak_type,
			last_played_at,
			updated_at,
			created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_hash, room_hash)
		DO UPDATE SET
			rating = excluded.rating,
			games_played = excluded.games_played,
			wins = excluded.wins,
			losses = excluded.losses,
			streak = excluded.streak,
			streak_type = excluded.streak_type,
			last_played_at = excluded.last_played_at,
			updated_at = excluded.updated_at`

	now := time.Now().UTC()
	created := profile.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err := r.db.ExecContext(
		ctx,
		r.rebind(query),
		profile.PlayerHash,
		profile.RoomHash,
		profile.Rating,
		profile.GamesPlayed,
		profile.Wins,
		profile.Losses,
		profile.Streak,
		profile.StreakType,
		profile.LastPlayedAt,
		now,
		created,
	)
	if err != nil {
		return fmt.Errorf("upsert checkers profile: %w", err)
	}
	return nil
}
