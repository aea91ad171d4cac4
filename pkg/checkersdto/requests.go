package checkersdto

type RequestMeta struct {
	SessionID string `json:"session_id,omitempty"`
	Room      string `json:"room"`
	Sender    string `json:"player"`
}

type MoveRequest struct {
	RequestMeta
	From Position `json:"from"`
	To   Position `json:"to"`
}

type StartSessionResponse struct {
	State   *SessionState `json:"state"`
	Resumed bool          `json:"resumed"`
	Message string        `json:"message"`
}

type StatusResponse struct {
	State   *SessionState `json:"state"`
	Message string        `json:"message"`
}

type OptionsResponse struct {
	Options *Options `json:"options"`
}

type PlayResponse struct {
	Summary *MoveSummary `json:"summary"`
	Message string       `json:"message"`
}

type ResignResponse struct {
	State   *SessionState `json:"state"`
	Message string        `json:"message"`
}

type HistoryResponse struct {
	Games   []*CheckersGame `json:"games"`
	Message string          `json:"message"`
}

type ProfileResponse struct {
	Profile *CheckersProfile `json:"profile"`
	Message string           `json:"message"`
}

type ErrorResponse struct {
	Error DomainError `json:"error"`
}
