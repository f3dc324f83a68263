package engine

import "github.com/google/uuid"

// SpriteID identifies a sprite in the board arena
type SpriteID = uuid.UUID

// Sprite is anything that can sit on a traversable cell.
// Variants: *Item, *Player, *Adversary.
type Sprite interface {
	ID() SpriteID
	Kind() Kind
	Name() string
	Position() Position
	Color() Color
	Size() float64

	setPosition(Position)
}

// Agent is a sprite that moves: it carries a strategy and a collision resolution table
type Agent interface {
	Sprite
	Strategy() Strategy
	Resolutions() *ResolutionTable
}

type sprite struct {
	id    SpriteID
	name  string
	pos   Position
	color Color
	size  float64
}

func newSprite(name string, pos Position, color Color, size float64) sprite {
	return sprite{
		id:    uuid.New(),
		name:  name,
		pos:   pos,
		color: color,
		size:  size,
	}
}

func (s *sprite) ID() SpriteID          { return s.id }
func (s *sprite) Name() string          { return s.name }
func (s *sprite) Position() Position    { return s.pos }
func (s *sprite) Color() Color          { return s.color }
func (s *sprite) Size() float64         { return s.size }
func (s *sprite) SetColor(c Color)      { s.color = c }
func (s *sprite) setPosition(p Position) { s.pos = p }

// Item is a static collectible
type Item struct {
	sprite
}

func NewItem(name string, pos Position) *Item {
	return &Item{sprite: newSprite(name, pos, ItemColor, ItemSize)}
}

func (i *Item) Kind() Kind { return KindCollectible }

type mobile struct {
	sprite
	strategy    Strategy
	resolutions ResolutionTable
}

func (m *mobile) Strategy() Strategy            { return m.strategy }
func (m *mobile) Resolutions() *ResolutionTable { return &m.resolutions }

// Player is the agent steered by the driver. It collects items and has a number of lives.
type Player struct {
	mobile
	lives  int
	points int
}

// NewPlayer creates a player with DefaultLives lives that consumes items and is hurt by adversaries
func NewPlayer(name string, pos Position, strategy Strategy) *Player {
	p := &Player{
		mobile: mobile{
			sprite:   newSprite(name, pos, PlayerColor, AgentSize),
			strategy: strategy,
		},
		lives: DefaultLives,
	}
	p.resolutions.Set(KindCollectible, ConsumeItem)
	p.resolutions.Set(KindAdversary, PlayerStruckByAdversary)
	return p
}

func (p *Player) Kind() Kind { return KindPlayer }

func (p *Player) Lives() int  { return p.lives }
func (p *Player) Points() int { return p.points }

// SetLives overrides the lives counter, used when building from config
func (p *Player) SetLives(n int) {
	p.lives = n
}

// Adversary is an autonomous agent that takes lives from the player
type Adversary struct {
	mobile
}

func NewAdversary(name string, pos Position, strategy Strategy) *Adversary {
	a := &Adversary{
		mobile: mobile{
			sprite:   newSprite(name, pos, AdversaryColor, AgentSize),
			strategy: strategy,
		},
	}
	a.resolutions.Set(KindPlayer, AdversaryStrikesPlayer)
	return a
}

func (a *Adversary) Kind() Kind { return KindAdversary }
