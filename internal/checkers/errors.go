package checkers

import "errors"

var (
	ErrInvalidMove = errors.New("invalid checkers move")
	ErrInvalidGrid = errors.New("invalid board snapshot")
	ErrWrongTurn   = errors.New("piece does not belong to the side to move")
	ErrGameOver    = errors.New("game is over")
	ErrInvalidGame = errors.New("invalid game setup")
)
