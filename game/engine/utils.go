package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// FindNearestAdversary returns the closest adversary on the board and its distance
func FindNearestAdversary(b *Board, from Position) (Sprite, int, bool) {
	var nearest Sprite
	minDistance := -1

	for _, s := range b.sprites {
		if s.Kind() != KindAdversary {
			continue
		}
		d := ManhattanDistance(from, s.Position())
		if minDistance == -1 || d < minDistance || (d == minDistance && s.Name() < nearest.Name()) {
			minDistance = d
			nearest = s
		}
	}

	return nearest, minDistance, nearest != nil
}

// AnalyzeDanger assesses how close the nearest adversary is to the player
func AnalyzeDanger(b *Board, p *Player) string {
	if !b.Contains(p.ID()) {
		return "CRITICAL: Player removed"
	}

	_, distance, found := FindNearestAdversary(b, p.Position())
	if !found {
		return "SAFE: No adversaries"
	}

	switch {
	case distance == 0:
		return "CRITICAL: Adversary on your cell"
	case distance == 1:
		return "DANGER: Adversary adjacent"
	case distance <= 3 && p.Lives() == 1:
		return "DANGER: Adversary close and last life"
	case distance <= 3:
		return "CAUTION: Adversary close"
	}
	return "SAFE: Adversaries far away"
}

// LocalView renders the 3x3 neighborhood around p, out-of-range cells as obstacles
func LocalView(b *Board, p Position) []string {
	rows := make([]string, 0, 3)
	for dr := -1; dr <= 1; dr++ {
		row := make([]rune, 0, 3)
		for dc := -1; dc <= 1; dc++ {
			row = append(row, b.Glyph(Position{Row: p.Row + dr, Col: p.Col + dc}))
		}
		rows = append(rows, string(row))
	}
	return rows
}

// CountDeadEnds counts traversable cells with exactly one traversable neighbor
func CountDeadEnds(b *Board) int {
	count := 0
	for _, p := range b.Traversables() {
		if len(b.TraversableNeighbors(p)) == 1 {
			count++
		}
	}
	return count
}

// ConnectedRegions groups traversable cells into 4-connected regions
func ConnectedRegions(b *Board) [][]Position {
	seen := make(map[Position]bool)
	var regions [][]Position

	for _, start := range b.Traversables() {
		if seen[start] {
			continue
		}
		seen[start] = true
		region := []Position{start}
		queue := []Position{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, d := range b.TraversableNeighbors(cur) {
				next := cur.Add(d)
				if !seen[next] {
					seen[next] = true
					region = append(region, next)
					queue = append(queue, next)
				}
			}
		}
		regions = append(regions, region)
	}

	return regions
}
