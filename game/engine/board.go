package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// CellKind is what a maze character maps to
type CellKind string

const (
	CellObstacle    CellKind = "obstacle"
	CellTraversable CellKind = "traversable"
)

// Legend maps maze characters to cell kinds
type Legend map[rune]CellKind

// DefaultLegend uses '#' for obstacles and ' ' for traversable cells
func DefaultLegend() Legend {
	return Legend{'#': CellObstacle, ' ': CellTraversable}
}

// Board is a fixed-size grid of cells. It owns every occupancy list and the
// arena of sprites currently placed on it.
type Board struct {
	cells   [][]Cell
	sprites map[SpriteID]Sprite
	rng     *rand.Rand
}

// Option configures a Board at build time
type Option func(*Board)

// WithRand sets the random source used for sampling and by the walk strategies
func WithRand(r *rand.Rand) Option {
	return func(b *Board) {
		b.rng = r
	}
}

// Build parses a maze description with the default legend
func Build(description string, opts ...Option) (*Board, error) {
	return BuildWithLegend(description, DefaultLegend(), opts...)
}

// BuildWithLegend parses a newline separated maze description, one character per cell.
// Blank lines are skipped. Rows must all have the same length.
func BuildWithLegend(description string, legend Legend, opts ...Option) (*Board, error) {
	b := &Board{
		sprites: make(map[SpriteID]Sprite),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	width := -1
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}

		runes := []rune(line)
		if width == -1 {
			width = len(runes)
		} else if len(runes) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d",
				ErrMalformedMaze, len(b.cells)+1, len(runes), width)
		}
		if width > MaxGridSize {
			return nil, fmt.Errorf("%w: row width %d exceeds %d", ErrMalformedMaze, width, MaxGridSize)
		}

		row := make([]Cell, 0, width)
		for col, ch := range runes {
			switch legend[ch] {
			case CellObstacle:
				row = append(row, ObstacleCell{})
			case CellTraversable:
				row = append(row, &TraversableCell{})
			default:
				return nil, fmt.Errorf("%w: unrecognized character %q at row %d, col %d",
					ErrMalformedMaze, ch, len(b.cells)+1, col+1)
			}
		}
		b.cells = append(b.cells, row)
	}

	if len(b.cells) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedMaze)
	}
	if len(b.cells) > MaxGridSize {
		return nil, fmt.Errorf("%w: %d rows exceeds %d", ErrMalformedMaze, len(b.cells), MaxGridSize)
	}

	return b, nil
}

// Width returns the number of columns
func (b *Board) Width() int {
	return len(b.cells[0])
}

// Height returns the number of rows
func (b *Board) Height() int {
	return len(b.cells)
}

// Rand returns the board's random source
func (b *Board) Rand() *rand.Rand {
	return b.rng
}

// InBounds reports whether p lies on the grid
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < len(b.cells) && p.Col >= 0 && p.Col < len(b.cells[0])
}

// Cell returns the cell at p. Out of range positions read as obstacles.
func (b *Board) Cell(p Position) Cell {
	if !b.InBounds(p) {
		return ObstacleCell{}
	}
	return b.cells[p.Row][p.Col]
}

// IsTraversable reports whether p is an in-range traversable cell
func (b *Board) IsTraversable(p Position) bool {
	return b.Cell(p).IsTraversable()
}

// TraversableNeighbors returns the compass directions leading from p to a traversable cell
func (b *Board) TraversableNeighbors(p Position) []Direction {
	var dirs []Direction
	for _, d := range Compass {
		if b.IsTraversable(p.Add(d)) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Occupants returns the IDs of sprites on the cell at p, oldest first
func (b *Board) Occupants(p Position) []SpriteID {
	return b.Cell(p).Occupants()
}

// SpritesAt returns the sprites on the cell at p, oldest first
func (b *Board) SpritesAt(p Position) []Sprite {
	ids := b.Occupants(p)
	out := make([]Sprite, 0, len(ids))
	for _, id := range ids {
		if s, ok := b.sprites[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Sprite looks up a placed sprite by ID
func (b *Board) Sprite(id SpriteID) (Sprite, bool) {
	s, ok := b.sprites[id]
	return s, ok
}

// Contains reports whether the sprite is currently on the board
func (b *Board) Contains(id SpriteID) bool {
	_, ok := b.sprites[id]
	return ok
}

// Place puts the sprite on the cell at its recorded position
func (b *Board) Place(s Sprite) error {
	if b.Contains(s.ID()) {
		return fmt.Errorf("%w: %s", ErrAlreadyPlaced, s.Name())
	}
	pos := s.Position()
	if err := b.Cell(pos).add(s.ID()); err != nil {
		return fmt.Errorf("%w: %s at %s is not a traversable cell", ErrInvalidPlacement, s.Name(), pos)
	}
	b.sprites[s.ID()] = s
	return nil
}

// Remove takes the sprite off the cell at its recorded position
func (b *Board) Remove(s Sprite) error {
	if !b.Contains(s.ID()) {
		return fmt.Errorf("%w: %s", ErrNotOnBoard, s.Name())
	}
	b.Cell(s.Position()).remove(s.ID())
	delete(b.sprites, s.ID())
	return nil
}

// Traversables returns every traversable position in row-major order
func (b *Board) Traversables() []Position {
	var out []Position
	for r, row := range b.cells {
		for c, cell := range row {
			if cell.IsTraversable() {
				out = append(out, Position{Row: r, Col: c})
			}
		}
	}
	return out
}

// SeedItems places one collectible on every traversable cell and returns how many were placed
func (b *Board) SeedItems() (int, error) {
	cells := b.Traversables()
	if len(cells) == 0 {
		return 0, ErrEmptyBoard
	}
	for _, p := range cells {
		if err := b.Place(NewItem("item", p)); err != nil {
			return 0, err
		}
	}
	return len(cells), nil
}

// RandomTraversableCell samples a traversable position uniformly
func (b *Board) RandomTraversableCell() (Position, error) {
	cells := b.Traversables()
	if len(cells) == 0 {
		return Position{}, ErrEmptyBoard
	}
	return cells[b.rng.IntN(len(cells))], nil
}

// CountByKind counts sprites of kind k across all cells
func (b *Board) CountByKind(k Kind) int {
	count := 0
	for _, row := range b.cells {
		for _, cell := range row {
			for _, id := range cell.Occupants() {
				if s, ok := b.sprites[id]; ok && s.Kind() == k {
					count++
				}
			}
		}
	}
	return count
}

// Render draws the board as text: '#' obstacle, ' ' empty, '.' item,
// 'P' player and 'G' adversary.
func (b *Board) Render() []string {
	rows := make([]string, len(b.cells))
	for r, row := range b.cells {
		var sb strings.Builder
		for c := range row {
			sb.WriteRune(b.Glyph(Position{Row: r, Col: c}))
		}
		rows[r] = sb.String()
	}
	return rows
}

// Glyph returns the character shown for the cell at p
func (b *Board) Glyph(p Position) rune {
	cell := b.Cell(p)
	if !cell.IsTraversable() {
		return '#'
	}
	sprites := b.SpritesAt(p)
	if len(sprites) == 0 {
		return ' '
	}
	// agents draw over items, latest agent wins
	top := sprites[len(sprites)-1]
	for i := len(sprites) - 1; i >= 0; i-- {
		if sprites[i].Kind() != KindCollectible {
			top = sprites[i]
			break
		}
	}
	return glyphFor(top.Kind())
}

func glyphFor(k Kind) rune {
	switch k {
	case KindCollectible:
		return '.'
	case KindPlayer:
		return 'P'
	case KindAdversary:
		return 'G'
	}
	return '?'
}
