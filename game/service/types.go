package service

import (
	"time"
	"unicode/utf8"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	ClockRunning   bool               `json:"clock_running"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// StepResult contains the result of advancing a session by one or more ticks
type StepResult struct {
	// Summary
	TicksRequested int    `json:"ticks_requested"`
	TicksExecuted  int    `json:"ticks_executed"`
	Truncated      bool   `json:"truncated,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Heading        string `json:"heading"`
	StoppedReason  string `json:"stopped_reason,omitempty"` // game_over|victory

	// Start/end snapshot
	StartPos    engine.Position `json:"start_pos"`
	EndPos      engine.Position `json:"end_pos"`
	StartLives  int             `json:"start_lives"`
	EndLives    int             `json:"end_lives"`
	PointsDelta int             `json:"points_delta"`

	// Per-tick compact trace (only for this call)
	Ticks  []engine.TickRecord `json:"ticks,omitempty"`
	Events []engine.Event      `json:"events"`

	GameOver  bool              `json:"game_over"`
	Victory   bool              `json:"victory"`
	Message   string            `json:"message,omitempty"`
	GameState *engine.GameState `json:"game_state"`
}

// HistoryOptions configures tick history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated tick history
type HistoryResponse struct {
	Ticks       []engine.TickRecord `json:"ticks"`
	TotalTicks  int                 `json:"total_ticks"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Adversaries int    `json:"adversaries"`
	Lives       int    `json:"lives"`
}

// NewConfigInfo summarizes config for listings
func NewConfigInfo(filename, configID string, config *engine.GameConfig) *ConfigInfo {
	info := &ConfigInfo{
		Filename:    filename,
		ConfigID:    configID,
		Name:        config.Name,
		Description: config.Description,
		Height:      len(config.Layout),
		Adversaries: len(config.Adversaries),
		Lives:       config.Player.Lives,
	}
	if len(config.Layout) > 0 {
		info.Width = utf8.RuneCountInString(config.Layout[0])
	}
	return info
}
