package game

import "errors"

var (
	ErrInvalidMove       = errors.New("invalid move")
	ErrPromotionRequired = errors.New("promotion piece required")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrGameOver          = errors.New("game over")
	ErrInvalidSetup      = errors.New("invalid entanglement setup")
	ErrCorruptState      = errors.New("corrupt game state")
)
