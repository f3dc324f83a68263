package engine

// Cell is a unit of board occupancy: either an ObstacleCell or a TraversableCell.
// The set is closed; only this package can add variants.
type Cell interface {
	// IsTraversable reports whether agents may occupy the cell
	IsTraversable() bool
	// Occupants returns a copy of the sprite IDs on the cell in insertion order
	Occupants() []SpriteID

	add(id SpriteID) error
	remove(id SpriteID) bool
}

// ObstacleCell blocks movement and never holds sprites
type ObstacleCell struct{}

func (ObstacleCell) IsTraversable() bool   { return false }
func (ObstacleCell) Occupants() []SpriteID { return nil }

func (ObstacleCell) add(SpriteID) error {
	return ErrInvalidPlacement
}

func (ObstacleCell) remove(SpriteID) bool { return false }

// TraversableCell holds an ordered multiset of sprites
type TraversableCell struct {
	occupants []SpriteID
}

func (c *TraversableCell) IsTraversable() bool { return true }

func (c *TraversableCell) Occupants() []SpriteID {
	out := make([]SpriteID, len(c.occupants))
	copy(out, c.occupants)
	return out
}

func (c *TraversableCell) add(id SpriteID) error {
	c.occupants = append(c.occupants, id)
	return nil
}

// remove drops the first occurrence of id
func (c *TraversableCell) remove(id SpriteID) bool {
	for i, o := range c.occupants {
		if o == id {
			c.occupants = append(c.occupants[:i], c.occupants[i+1:]...)
			return true
		}
	}
	return false
}
