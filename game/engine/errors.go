package engine

import "errors"

var (
	// ErrMalformedMaze is returned when a maze description has ragged rows,
	// unknown characters or no rows at all.
	ErrMalformedMaze = errors.New("malformed maze")

	// ErrEmptyBoard is returned when an operation needs a traversable cell and the board has none.
	ErrEmptyBoard = errors.New("board has no traversable cells")

	// ErrInvalidPlacement is returned when a sprite is placed on an obstacle or outside the grid.
	ErrInvalidPlacement = errors.New("invalid placement")

	// ErrAlreadyPlaced is returned by Place for a sprite that is already on the board.
	ErrAlreadyPlaced = errors.New("sprite already on board")

	// ErrNotOnBoard is returned by Remove for a sprite that is not on the board.
	ErrNotOnBoard = errors.New("sprite not on board")

	// ErrEnclosed is returned by autonomous strategies standing on a cell with no exit.
	ErrEnclosed = errors.New("no traversable neighbor")

	// ErrUnknownDirection is returned by ParseDirection for an unrecognized direction name.
	ErrUnknownDirection = errors.New("unknown direction")
)
