package checkersdto

type MoveView struct {
	Path     []Position `json:"path"`
	Captures []Position `json:"captures,omitempty"`
	Kings    bool       `json:"kings,omitempty"`
	Text     string     `json:"text"`
}

// MoveSummary describes one turn: the player's move and the computer's reply.
// PendingComputerMove is set instead of PlayerMove when an owed reply was
// played first; the player's move was not applied and should be resent.
type MoveSummary struct {
	State               *SessionState    `json:"state"`
	PendingComputerMove *MoveView        `json:"pending_computer_move,omitempty"`
	PlayerMove          *MoveView        `json:"player_move,omitempty"`
	ComputerMove        *MoveView        `json:"computer_move,omitempty"`
	Finished            bool             `json:"finished"`
	Result              string           `json:"result,omitempty"`
	GameID              int64            `json:"game_id,omitempty"`
	Profile             *CheckersProfile `json:"profile,omitempty"`
	RatingDelta         int              `json:"rating_delta,omitempty"`
}
