package checkerspresenter

import (
	"context"
	"errors"

	corecheckers "github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/domain"
	svc "github.com/park285/cheese-checkers/internal/service/checkers"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
)

func ToDTOPosition(p corecheckers.Position) checkersdto.Position {
	return checkersdto.Position{X: p.X, Y: p.Y}
}

func FromDTOPosition(p checkersdto.Position) corecheckers.Position {
	return corecheckers.Pos(p.X, p.Y)
}

func toDTOPositions(list []corecheckers.Position) []checkersdto.Position {
	out := make([]checkersdto.Position, 0, len(list))
	for _, p := range list {
		out = append(out, ToDTOPosition(p))
	}
	return out
}

func ToDTOState(s *svc.SessionState) *checkersdto.SessionState {
	if s == nil {
		return nil
	}
	state := &checkersdto.SessionState{
		SessionUUID:      s.SessionUUID,
		PlayerName:       s.PlayerName,
		Board:            s.Board,
		Turn:             s.Turn.String(),
		MoveCount:        s.MoveCount,
		BlackPieces:      s.BlackPieces,
		RedPieces:        s.RedPieces,
		Selectable:       toDTOPositions(s.Selectable),
		Over:             s.Over,
		MandatoryCapture: s.MandatoryCapture,
		BoardImage:       append([]byte(nil), s.BoardImage...),
		Profile:          ToDTOProfile(s.Profile),
		RatingDelta:      s.RatingDelta,
		StartedAt:        s.StartedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.Over {
		state.Winner = s.Winner.String()
	}
	return state
}

func ToDTOMove(m *corecheckers.Move) *checkersdto.MoveView {
	if m == nil {
		return nil
	}
	return &checkersdto.MoveView{
		Path:     toDTOPositions(m.Positions),
		Captures: toDTOPositions(m.Captures),
		Kings:    m.Kings,
		Text:     m.String(),
	}
}

func ToDTOMoveSummary(m *svc.MoveSummary) *checkersdto.MoveSummary {
	if m == nil {
		return nil
	}
	return &checkersdto.MoveSummary{
		State:               ToDTOState(m.State),
		PendingComputerMove: ToDTOMove(m.PendingComputerMove),
		PlayerMove:          ToDTOMove(m.PlayerMove),
		ComputerMove:        ToDTOMove(m.ComputerMove),
		Finished:            m.Finished,
		Result:              m.Result,
		GameID:              m.GameID,
		Profile:             ToDTOProfile(m.Profile),
		RatingDelta:         m.RatingDelta,
	}
}

func ToDTOOptions(o *svc.OptionsResult) *checkersdto.Options {
	if o == nil {
		return nil
	}
	return &checkersdto.Options{
		From:         ToDTOPosition(o.From),
		Destinations: toDTOPositions(o.Destinations),
		BoardImage:   append([]byte(nil), o.BoardImage...),
	}
}

func ToDTOProfile(p *domain.CheckersProfile) *checkersdto.CheckersProfile {
	if p == nil {
		return nil
	}
	return &checkersdto.CheckersProfile{
		Rating:       p.Rating,
		GamesPlayed:  p.GamesPlayed,
		Wins:         p.Wins,
		Losses:       p.Losses,
		Streak:       p.Streak,
		StreakType:   p.StreakType,
		LastPlayedAt: p.LastPlayedAt,
	}
}

func ToDTOGame(g *domain.CheckersGame) *checkersdto.CheckersGame {
	if g == nil {
		return nil
	}
	return &checkersdto.CheckersGame{
		ID:           g.ID,
		SessionUUID:  g.SessionUUID,
		Result:       g.Result,
		ResultMethod: g.ResultMethod,
		FinalBoard:   g.FinalBoard,
		BlackPieces:  g.BlackPieces,
		RedPieces:    g.RedPieces,
		MoveCount:    g.MoveCount,
		StartedAt:    g.StartedAt,
		EndedAt:      g.EndedAt,
		Duration:     g.Duration,
	}
}

func ToDTOGames(list []*domain.CheckersGame) []*checkersdto.CheckersGame {
	out := make([]*checkersdto.CheckersGame, 0, len(list))
	for _, g := range list {
		if g == nil {
			continue
		}
		out = append(out, ToDTOGame(g))
	}
	return out
}

// ToDomainError maps service and engine errors to a transport-neutral code.
func ToDomainError(err error) checkersdto.DomainError {
	code := checkersdto.CodeInternal
	retryable := false
	switch {
	case errors.Is(err, svc.ErrSessionNotFound):
		code = checkersdto.CodeSessionNotFound
	case errors.Is(err, svc.ErrSessionInProgress):
		code = checkersdto.CodeSessionInProgress
	case errors.Is(err, svc.ErrInvalidMove), errors.Is(err, corecheckers.ErrInvalidMove), errors.Is(err, corecheckers.ErrWrongTurn):
		code = checkersdto.CodeInvalidMove
	case errors.Is(err, svc.ErrNotSelectable):
		code = checkersdto.CodeNotSelectable
	case errors.Is(err, corecheckers.ErrGameOver):
		code = checkersdto.CodeGameOver
	case errors.Is(err, svc.ErrGameNotFound):
		code = checkersdto.CodeGameNotFound
	case errors.Is(err, svc.ErrProfileNotFound):
		code = checkersdto.CodeProfileNotFound
	case errors.Is(err, svc.ErrRoomNotAllowed):
		code = checkersdto.CodeRoomNotAllowed
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		retryable = true
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return checkersdto.DomainError{Code: code, Message: msg, Retryable: retryable}
}
