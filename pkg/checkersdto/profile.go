package checkersdto

import "time"

type CheckersProfile struct {
	Rating       int       `json:"rating"`
	GamesPlayed  int       `json:"games_played"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Streak       int       `json:"streak"`
	StreakType   string    `json:"streak_type"`
	LastPlayedAt time.Time `json:"last_played_at"`
}
