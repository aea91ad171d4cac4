package checkersdto

const (
	CodeSessionNotFound   = "session_not_found"
	CodeSessionInProgress = "session_in_progress"
	CodeInvalidMove       = "invalid_move"
	CodeNotSelectable     = "not_selectable"
	CodeGameOver          = "game_over"
	CodeGameNotFound      = "game_not_found"
	CodeProfileNotFound   = "profile_not_found"
	CodeRoomNotAllowed    = "room_not_allowed"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "checkers service error"
}
