package engine

// SpriteView is a read-only rendering record for one sprite
type SpriteView struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Color    Color    `json:"color"`
	Size     float64  `json:"size"`
}

// PlayerView adds the HUD counters to a SpriteView
type PlayerView struct {
	SpriteView
	Lives   int    `json:"lives"`
	Points  int    `json:"points"`
	Heading string `json:"heading"`
	OnBoard bool   `json:"on_board"`
}

// GameState is a snapshot of the game for drivers. It never aliases engine internals.
type GameState struct {
	Grid       []string     `json:"grid"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Player     PlayerView   `json:"player"`
	Agents     []SpriteView `json:"agents"`
	ItemsLeft  int          `json:"items_left"`
	Tick       int          `json:"tick"`
	TotalTicks int          `json:"total_ticks"`
	Message    string       `json:"message"`
	GameOver   bool         `json:"game_over"`
	Victory    bool         `json:"victory"`
	ConfigName string       `json:"config_name"`
	LastEvents []Event      `json:"last_events,omitempty"`

	// Computed helper views
	LocalView3x3 []string `json:"local_view_3x3,omitempty"`
	Danger       string   `json:"danger,omitempty"`
}

// ViewOf builds the rendering record for s
func ViewOf(s Sprite) SpriteView {
	return SpriteView{
		ID:       s.ID().String(),
		Kind:     s.Kind(),
		Name:     s.Name(),
		Position: s.Position(),
		Color:    s.Color(),
		Size:     s.Size(),
	}
}

// GetState returns a fresh snapshot of the game
func (e *GameEngine) GetState() *GameState {
	state := &GameState{
		Grid:       e.board.Render(),
		Width:      e.board.Width(),
		Height:     e.board.Height(),
		ItemsLeft:  e.board.CountByKind(KindCollectible),
		Tick:       e.tick,
		TotalTicks: e.total,
		Message:    e.message,
		GameOver:   e.over,
		Victory:    e.victory,
		ConfigName: e.config.Name,
		LastEvents: append([]Event(nil), e.last...),
	}

	state.Player = PlayerView{
		SpriteView: ViewOf(e.player),
		Lives:      e.player.Lives(),
		Points:     e.player.Points(),
		Heading:    e.steer.Heading().String(),
		OnBoard:    e.board.Contains(e.player.ID()),
	}

	for _, a := range e.agents {
		if a.Kind() == KindPlayer {
			continue
		}
		state.Agents = append(state.Agents, ViewOf(a))
	}

	state.LocalView3x3 = LocalView(e.board, e.player.Position())
	state.Danger = AnalyzeDanger(e.board, e.player)
	return state
}
