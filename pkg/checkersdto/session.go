package checkersdto

import "time"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SessionState is a snapshot of an in-flight game. Board is indexed [x][y]:
// 0 empty, 1 black man, 2 red man, 4 black king, 5 red king.
type SessionState struct {
	SessionUUID      string           `json:"session_uuid"`
	PlayerName       string           `json:"player_name"`
	Board            [8][8]int        `json:"board"`
	Turn             string           `json:"turn"`
	MoveCount        int              `json:"move_count"`
	BlackPieces      int              `json:"black_pieces"`
	RedPieces        int              `json:"red_pieces"`
	Selectable       []Position       `json:"selectable"`
	Over             bool             `json:"over"`
	Winner           string           `json:"winner,omitempty"`
	MandatoryCapture bool             `json:"mandatory_capture"`
	BoardImage       []byte           `json:"-"`
	Profile          *CheckersProfile `json:"profile,omitempty"`
	RatingDelta      int              `json:"rating_delta,omitempty"`
	StartedAt        time.Time        `json:"started_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type Options struct {
	From         Position   `json:"from"`
	Destinations []Position `json:"destinations"`
	BoardImage   []byte     `json:"-"`
}
