package engine

import "fmt"

// Resolution is applied when a moving agent finds hit on its destination cell.
// Setting out.Cancelled stops the mover's occupancy update for this move.
type Resolution func(b *Board, mover Agent, hit Sprite, out *MoveOutcome)

// ResolutionTable maps each encounterable kind to the mover's policy, nil meaning "ignore"
type ResolutionTable [kindCount]Resolution

// Set registers r for encounters with kind k
func (t *ResolutionTable) Set(k Kind, r Resolution) {
	t[k] = r
}

// For returns the policy for kind k, or nil
func (t *ResolutionTable) For(k Kind) Resolution {
	if k < 0 || k >= kindCount {
		return nil
	}
	return t[k]
}

// MoveOutcome describes what happened during one agent move
type MoveOutcome struct {
	Agent     string   `json:"agent"`
	From      Position `json:"from"`
	To        Position `json:"to"`
	Moved     bool     `json:"moved"`
	Cancelled bool     `json:"cancelled,omitempty"`
	Skipped   bool     `json:"skipped,omitempty"`
	Events    []Event  `json:"events,omitempty"`
}

// Move runs one move for agent a: ask its strategy for a destination, resolve
// collisions with every sprite already there (newest first), then update
// occupancy unless a resolution cancelled the move. Agents no longer on the
// board are skipped.
func (b *Board) Move(a Agent) (MoveOutcome, error) {
	from := a.Position()
	out := MoveOutcome{Agent: a.Name(), From: from, To: from}

	if !b.Contains(a.ID()) {
		out.Skipped = true
		return out, nil
	}

	to, err := a.Strategy().Next(b, from)
	if err != nil {
		return out, err
	}
	if !b.IsTraversable(to) {
		return out, fmt.Errorf("%w: %s strategy chose %s", ErrInvalidPlacement, a.Name(), to)
	}

	// Every match is resolved, including after a cancellation, against a snapshot
	// taken before any resolution mutated the cell.
	present := b.SpritesAt(to)
	table := a.Resolutions()
	for i := len(present) - 1; i >= 0; i-- {
		hit := present[i]
		if hit.ID() == a.ID() {
			continue
		}
		if resolve := table.For(hit.Kind()); resolve != nil {
			resolve(b, a, hit, &out)
		}
	}

	if out.Cancelled {
		out.To = a.Position()
		return out, nil
	}

	if err := b.Cell(to).add(a.ID()); err != nil {
		return out, err
	}
	b.Cell(from).remove(a.ID())
	a.setPosition(to)

	out.To = to
	out.Moved = true
	return out, nil
}

// ConsumeItem removes the item and gives the mover a point
func ConsumeItem(b *Board, mover Agent, hit Sprite, out *MoveOutcome) {
	if err := b.Remove(hit); err != nil {
		return
	}
	ev := Event{Type: EventItemConsumed, Agent: mover.Name(), Target: hit.Name(), Position: hit.Position()}
	if p, ok := mover.(*Player); ok {
		p.points++
		ev.Points = p.points
	}
	out.Events = append(out.Events, ev)
}

// PlayerStruckByAdversary takes a life from the moving player. At zero lives the
// player leaves the board where it stands and the move is cancelled.
func PlayerStruckByAdversary(b *Board, mover Agent, hit Sprite, out *MoveOutcome) {
	p, ok := mover.(*Player)
	if !ok {
		return
	}
	p.lives--
	out.Events = append(out.Events, Event{
		Type: EventLifeLost, Agent: hit.Name(), Target: p.Name(), Position: hit.Position(), Lives: p.lives,
	})
	if p.lives == 0 {
		// Move only runs placed agents and lives reach zero once
		_ = b.Remove(p)
		out.Cancelled = true
		out.Events = append(out.Events, Event{
			Type: EventPlayerRemoved, Agent: hit.Name(), Target: p.Name(), Position: p.Position(), Points: p.points,
		})
	}
}

// AdversaryStrikesPlayer takes a life from the player the adversary moved onto.
// At zero lives the player is removed; the adversary's move always proceeds.
func AdversaryStrikesPlayer(b *Board, mover Agent, hit Sprite, out *MoveOutcome) {
	p, ok := hit.(*Player)
	if !ok {
		return
	}
	p.lives--
	out.Events = append(out.Events, Event{
		Type: EventLifeLost, Agent: mover.Name(), Target: p.Name(), Position: p.Position(), Lives: p.lives,
	})
	if p.lives == 0 {
		// hit comes from the cell snapshot and lives reach zero once
		_ = b.Remove(p)
		out.Events = append(out.Events, Event{
			Type: EventPlayerRemoved, Agent: mover.Name(), Target: p.Name(), Position: p.Position(), Points: p.points,
		})
	}
}
