package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

var (
	// ErrSessionNotFound wraps every lookup failure so transports can map it to 404
	ErrSessionNotFound = errors.New("session not found")
	// ErrBadRequest marks caller mistakes such as an unknown direction
	ErrBadRequest = errors.New("bad request")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// session looks up sessionID and bumps its last access time. Callers hold the
// write lock because the bump writes Session.LastAccessedAt.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func infoFor(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session. An empty configName uses the default config.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	configID := configName
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			available, listErr := s.configs.ListConfigs()
			if listErr == nil && len(available) > 0 {
				ids := make([]string, 0, len(available))
				for _, cfg := range available {
					ids = append(ids, cfg.ConfigID)
				}
				return nil, fmt.Errorf("%w: config '%s' not usable (%v). Available configs: %v",
					ErrBadRequest, configName, err, ids)
			}
			return nil, fmt.Errorf("%w: config '%s' not usable: %v", ErrBadRequest, configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configIDFor(config.Name)
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configID

	log.WithFields(log.Fields{"session": sess.ID, "config": configID}).Info("session created")
	return infoFor(sess), nil
}

// configIDFor looks up the config_id of a config by display name
func (s *gameServiceImpl) configIDFor(name string) string {
	available, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range available {
			if cfg.Name == name {
				return cfg.ConfigID
			}
		}
	}
	if name == "" {
		return "default"
	}
	return name
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return infoFor(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, infoFor(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// Steer sets the player's heading without advancing the simulation
func (s *gameServiceImpl) Steer(ctx context.Context, sessionID, direction string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Steer(direction); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return sess.Engine.GetState(), nil
}

// Step optionally steers, then advances up to ticks ticks (at least one, at most
// engine.MaxStepTicks), stopping early at game over or when ctx is done.
func (s *gameServiceImpl) Step(ctx context.Context, sessionID, direction string, ticks int) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	eng := sess.Engine

	if direction != "" {
		if err := eng.Steer(direction); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}

	if ticks <= 0 {
		ticks = 1
	}
	player := eng.GetPlayer()
	result := &StepResult{
		TicksRequested: ticks,
		Heading:        eng.Heading().String(),
		StartPos:       player.Position(),
		StartLives:     player.Lives(),
		Events:         []engine.Event{},
	}
	if ticks > engine.MaxStepTicks {
		result.Truncated = true
		result.Limit = engine.MaxStepTicks
		ticks = engine.MaxStepTicks
	}
	startPoints := player.Points()

	for i := 0; i < ticks && !eng.IsGameOver(); i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		tick, err := eng.Tick()
		if err != nil {
			log.WithError(err).WithField("session", sessionID).Error("tick failed")
			return nil, err
		}
		result.TicksExecuted++
		result.Events = append(result.Events, tick.Events...)
		if last := eng.GetLastTick(); last != nil {
			result.Ticks = append(result.Ticks, *last)
		}
	}

	// the player pointer changes only on reset, which holds the same lock
	player = eng.GetPlayer()
	state := eng.GetState()
	result.EndPos = player.Position()
	result.EndLives = player.Lives()
	result.PointsDelta = player.Points() - startPoints
	result.GameOver = state.GameOver
	result.Victory = state.Victory
	result.Message = state.Message
	result.GameState = state
	switch {
	case state.Victory:
		result.StoppedReason = "victory"
	case state.GameOver:
		result.StoppedReason = "game_over"
	}

	log.WithFields(log.Fields{
		"session": sessionID,
		"tick":    state.Tick,
		"ticks":   result.TicksExecuted,
		"pos":     result.EndPos.String(),
		"lives":   result.EndLives,
		"points":  player.Points(),
	}).Debug("step")

	return result, nil
}

// Reset rebuilds the session's board from its config
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	state, err := sess.Engine.Reset()
	if err != nil {
		return nil, fmt.Errorf("failed to reset: %w", err)
	}
	log.WithField("session", sessionID).Info("game reset")
	return state, nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetHistory returns a page of tick history, newest first by default
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	ticks := []engine.TickRecord{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				ticks = append(ticks, history[i])
			}
		} else {
			ticks = append(ticks, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Ticks:       ticks,
		TotalTicks:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
