package domain

import (
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"
)

type CheckersGame struct {
	ID           int64
	SessionUUID  string
	PlayerHash   string
	RoomHash     string
	Result       string
	ResultMethod string
	FinalBoard   checkers.Grid
	BlackPieces  int
	RedPieces    int
	MoveCount    int
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}

type CheckersProfile struct {
	PlayerHash   string
	RoomHash     string
	Rating       int
	GamesPlayed  int
	Wins         int
	Losses       int
	Streak       int
	StreakType   string
	LastPlayedAt time.Time
	UpdatedAt    time.Time
	CreatedAt    time.Time
}
