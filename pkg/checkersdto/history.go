package checkersdto

import "time"

type CheckersGame struct {
	ID           int64         `json:"id"`
	SessionUUID  string        `json:"session_uuid"`
	Result       string        `json:"result"`
	ResultMethod string        `json:"result_method"`
	FinalBoard   [8][8]int     `json:"final_board"`
	BlackPieces  int           `json:"black_pieces"`
	RedPieces    int           `json:"red_pieces"`
	MoveCount    int           `json:"move_count"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at"`
	Duration     time.Duration `json:"duration_ns"`
}
