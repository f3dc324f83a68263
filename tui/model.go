package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

// TickMsg advances the simulation by one tick
type TickMsg time.Time

var (
	wallStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2121de"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffef01"))
	hudStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#dddddd"))
	dangerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4040"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Model drives a GameEngine from the bubbletea update loop. The engine is only
// touched from Update and View, which bubbletea calls on one goroutine.
type Model struct {
	engine   *engine.GameEngine
	interval time.Duration
	paused   bool
	err      error
	styles   map[engine.Color]lipgloss.Style
}

// New creates a model ticking eng at its configured rate
func New(eng *engine.GameEngine) Model {
	return Model{
		engine:   eng,
		interval: time.Duration(eng.GetConfig().TickInterval()) * time.Millisecond,
		styles:   make(map[engine.Color]lipgloss.Style),
	}
}

// Paused reports whether the clock is stopped
func (m Model) Paused() bool { return m.paused }

// Err returns the tick error that ended the program, if any
func (m Model) Err() error { return m.err }

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

var steerKeys = map[string]string{
	"up": "up", "w": "up", "k": "up",
	"down": "down", "s": "down", "j": "down",
	"left": "left", "a": "left", "h": "left",
	"right": "right", "d": "right", "l": "right",
	" ": "none",
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if dir, ok := steerKeys[key]; ok {
			if err := m.engine.Steer(dir); err != nil {
				log.WithError(err).Warn("steer failed")
			}
			return m, nil
		}
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
		case "n":
			// single step while paused
			if m.paused {
				return m.step()
			}
		case "r":
			if _, err := m.engine.Reset(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		return m, nil

	case TickMsg:
		if !m.paused {
			next, cmd := m.step()
			if cmd != nil {
				return next, cmd
			}
			m = next.(Model)
		}
		return m, m.tickCmd()
	}
	return m, nil
}

// step runs one tick. It returns tea.Quit only on engine errors.
func (m Model) step() (tea.Model, tea.Cmd) {
	if m.engine.IsGameOver() {
		return m, nil
	}
	result, err := m.engine.Tick()
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	for _, ev := range result.Events {
		if ev.Type != engine.EventItemConsumed {
			log.WithFields(log.Fields{"tick": result.Tick, "event": ev.Type, "agent": ev.Agent}).Debug("event")
		}
	}
	return m, nil
}

func (m Model) style(c engine.Color) lipgloss.Style {
	if s, ok := m.styles[c]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	m.styles[c] = s
	return s
}

// cell renders one board cell, agents drawn over items
func (m Model) cell(b *engine.Board, p engine.Position) string {
	if !b.IsTraversable(p) {
		return wallStyle.Render("#")
	}
	sprites := b.SpritesAt(p)
	if len(sprites) == 0 {
		return " "
	}
	top := sprites[len(sprites)-1]
	for i := len(sprites) - 1; i >= 0; i-- {
		if sprites[i].Kind() != engine.KindCollectible {
			top = sprites[i]
			break
		}
	}
	return m.style(top.Color()).Render(string(b.Glyph(p)))
}

func (m Model) View() string {
	b := m.engine.GetBoard()
	state := m.engine.GetState()

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("MAZE CHASE · "+state.ConfigName) + "\n\n")

	for r := 0; r < b.Height(); r++ {
		for c := 0; c < b.Width(); c++ {
			sb.WriteString(m.cell(b, engine.Position{Row: r, Col: c}))
		}
		sb.WriteString("\n")
	}

	hud := fmt.Sprintf("Lives: %d  Points: %d  Items: %d  Tick: %d  Heading: %s",
		state.Player.Lives, state.Player.Points, state.ItemsLeft, state.Tick, state.Player.Heading)
	if m.paused {
		hud += "  [paused]"
	}
	sb.WriteString("\n" + hudStyle.Render(hud) + "\n")

	if strings.HasPrefix(state.Danger, "DANGER") || strings.HasPrefix(state.Danger, "CRITICAL") {
		sb.WriteString(dangerStyle.Render(state.Danger) + "\n")
	}
	if state.Message != "" {
		sb.WriteString(state.Message + "\n")
	}

	sb.WriteString(helpStyle.Render("\narrows/wasd steer · space stop · p pause · n step · r reset · q quit") + "\n")
	return sb.String()
}

// Run plays eng in the terminal until the user quits
func Run(eng *engine.GameEngine, opts ...tea.ProgramOption) error {
	final, err := tea.NewProgram(New(eng), opts...).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
