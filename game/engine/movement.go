package engine

import "fmt"

// Strategy computes an agent's candidate destination. It never mutates the board.
type Strategy interface {
	Next(b *Board, from Position) (Position, error)
	Name() string
}

// Strategy names used in configuration
const (
	StrategyRandom     = "random"
	StrategyPersistent = "persistent"
	StrategyManual     = "manual"
)

// NewStrategy builds an autonomous strategy by configuration name
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case StrategyRandom, "":
		return &RandomWalk{}, nil
	case StrategyPersistent:
		return NewPersistentWalk(), nil
	case StrategyManual:
		return NewManualWalk(), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}

// RandomWalk steps to a uniformly chosen traversable neighbor every call
type RandomWalk struct{}

func (w *RandomWalk) Name() string { return StrategyRandom }

func (w *RandomWalk) Next(b *Board, from Position) (Position, error) {
	dirs := b.TraversableNeighbors(from)
	if len(dirs) == 0 {
		return from, fmt.Errorf("%w: random walk at %s", ErrEnclosed, from)
	}
	return from.Add(dirs[b.Rand().IntN(len(dirs))]), nil
}

// PersistentWalk keeps its heading until blocked, then turns to a random open direction
type PersistentWalk struct {
	heading Direction
}

func NewPersistentWalk() *PersistentWalk {
	return &PersistentWalk{heading: Right}
}

func (w *PersistentWalk) Name() string { return StrategyPersistent }

// Heading returns the current direction of travel
func (w *PersistentWalk) Heading() Direction {
	return w.heading
}

func (w *PersistentWalk) Next(b *Board, from Position) (Position, error) {
	if w.heading == None || !b.IsTraversable(from.Add(w.heading)) {
		dirs := b.TraversableNeighbors(from)
		if len(dirs) == 0 {
			return from, fmt.Errorf("%w: persistent walk at %s", ErrEnclosed, from)
		}
		w.heading = dirs[b.Rand().IntN(len(dirs))]
	}
	return from.Add(w.heading), nil
}

// ManualWalk follows a heading requested by the driver. Blocked headings keep the agent in place.
type ManualWalk struct {
	heading Direction
}

func NewManualWalk() *ManualWalk {
	return &ManualWalk{heading: None}
}

func (w *ManualWalk) Name() string { return StrategyManual }

// SetHeading records the driver's requested direction for the following moves
func (w *ManualWalk) SetHeading(d Direction) {
	w.heading = d
}

func (w *ManualWalk) Heading() Direction {
	return w.heading
}

func (w *ManualWalk) Next(b *Board, from Position) (Position, error) {
	if w.heading == None {
		return from, nil
	}
	to := from.Add(w.heading)
	if !b.IsTraversable(to) {
		return from, nil
	}
	return to, nil
}
