package service_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = fmt.Sprintf("t%03d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, engine.WithEngineRand(rand.New(rand.NewPCG(3, 5))))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("no such session")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return errors.New("no such session")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("no such session")
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	mu      sync.Mutex
	configs map[string]*engine.GameConfig
}

func testConfig(name string, layout ...string) *engine.GameConfig {
	return &engine.GameConfig{
		Name:        name,
		Description: name + " maze",
		Layout:      layout,
		Player:      engine.PlayerConfig{Name: "pc", Lives: 3},
		TickMillis:  engine.MinTickMillis,
		Messages: engine.Messages{
			Welcome:  "Welcome!",
			LifeLost: "Ouch!",
			Victory:  "Victory! Points: %d",
			GameOver: "Game over! Points: %d",
		},
	}
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"open":     testConfig("open", "#####", "#   #", "#   #", "#   #", "#####"),
			"corridor": testConfig("corridor", "#####", "#   #", "#####"),
			"single":   testConfig("single", "###", "# #", "###"),
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*service.ConfigInfo
	for _, id := range []string{"corridor", "open", "single"} {
		if config, ok := m.configs[id]; ok {
			result = append(result, service.NewConfigInfo(id+".json", id, config))
		}
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configs["open"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[name] = config
	return nil
}

func newTestService() service.GameService {
	return service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
}

func createSession(t *testing.T, svc service.GameService, configName string) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), configName)
	require.NoError(t, err)
	return info
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	t.Run("default config", func(t *testing.T) {
		info := createSession(t, svc, "")
		assert.NotEmpty(t, info.ID)
		assert.Equal(t, "open", info.ConfigName)
		require.NotNil(t, info.GameState)
		assert.Equal(t, 9, info.GameState.ItemsLeft)
		assert.Equal(t, "Welcome!", info.GameState.Message)
	})

	t.Run("named config", func(t *testing.T) {
		info := createSession(t, svc, "corridor")
		assert.Equal(t, "corridor", info.ConfigName)
		assert.Equal(t, 3, info.GameState.ItemsLeft)
	})

	t.Run("unknown config lists alternatives", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrBadRequest)
		assert.Contains(t, err.Error(), "corridor")
	})
}

func TestGetSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	created := createSession(t, svc, "corridor")

	info, err := svc.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, info.ID)
	assert.Equal(t, "corridor", info.ConfigName)

	_, err = svc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestConcurrentReads(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	created := createSession(t, svc, "corridor")

	// lookups bump the last access time while other readers copy it
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				info, err := svc.GetSession(ctx, created.ID)
				if !assert.NoError(t, err) {
					return
				}
				assert.False(t, info.LastAccessedAt.IsZero())

				_, err = svc.GetGameState(ctx, created.ID)
				assert.NoError(t, err)
				_, err = svc.GetHistory(ctx, created.ID, service.HistoryOptions{})
				assert.NoError(t, err)
				_, err = svc.ListSessions(ctx)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "")

	require.NoError(t, svc.DeleteSession(ctx, info.ID))
	_, err := svc.GetSession(ctx, info.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, info.ID), service.ErrSessionNotFound)
}

func TestSteer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "")

	state, err := svc.Steer(ctx, info.ID, "down")
	require.NoError(t, err)
	assert.Equal(t, "down", state.Player.Heading)
	assert.Equal(t, 0, state.Tick, "steering does not advance time")

	_, err = svc.Steer(ctx, info.ID, "sideways")
	assert.ErrorIs(t, err, service.ErrBadRequest)

	_, err = svc.Steer(ctx, "missing", "up")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestStep(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "corridor")

	result, err := svc.Step(ctx, info.ID, "right", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TicksRequested)
	assert.Equal(t, 4, result.TicksExecuted)
	assert.Equal(t, "right", result.Heading)
	assert.Equal(t, engine.Position{Row: 1, Col: 3}, result.EndPos)
	assert.GreaterOrEqual(t, result.PointsDelta, 1)
	assert.Len(t, result.Ticks, 4)
	assert.False(t, result.GameOver)
	assert.NotEmpty(t, result.Events)
	assert.Equal(t, engine.EventItemConsumed, result.Events[0].Type)

	result, err = svc.Step(ctx, info.ID, "left", 10)
	require.NoError(t, err)
	assert.Less(t, result.TicksExecuted, 10)
	assert.True(t, result.GameOver)
	assert.True(t, result.Victory)
	assert.Equal(t, "victory", result.StoppedReason)
	assert.Equal(t, "Victory! Points: 3", result.Message)
	assert.Equal(t, engine.Position{Row: 1, Col: 1}, result.EndPos)

	result, err = svc.Step(ctx, info.ID, "", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TicksExecuted)
	assert.Equal(t, "victory", result.StoppedReason)
}

func TestStep_Defaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "open")

	t.Run("non-positive ticks run one tick", func(t *testing.T) {
		result, err := svc.Step(ctx, info.ID, "", 0)
		require.NoError(t, err)
		assert.Equal(t, 1, result.TicksExecuted)
		assert.Equal(t, "none", result.Heading)
	})

	t.Run("ticks are capped", func(t *testing.T) {
		result, err := svc.Step(ctx, info.ID, "stop", engine.MaxStepTicks+100)
		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, engine.MaxStepTicks, result.Limit)
		assert.Equal(t, engine.MaxStepTicks, result.TicksExecuted)
	})

	t.Run("cancelled context stops before ticking", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		result, err := svc.Step(cancelled, info.ID, "", 10)
		require.NoError(t, err)
		assert.Equal(t, 0, result.TicksExecuted)
	})

	t.Run("bad direction", func(t *testing.T) {
		_, err := svc.Step(ctx, info.ID, "sideways", 1)
		assert.ErrorIs(t, err, service.ErrBadRequest)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Step(ctx, "missing", "", 1)
		assert.ErrorIs(t, err, service.ErrSessionNotFound)
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "single")

	result, err := svc.Step(ctx, info.ID, "", 1)
	require.NoError(t, err)
	require.True(t, result.Victory)

	state, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	assert.False(t, state.GameOver)
	assert.Equal(t, 1, state.ItemsLeft)
	assert.Equal(t, 0, state.Tick)
	assert.Equal(t, 1, state.TotalTicks)

	_, err = svc.Reset(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "open")

	_, err := svc.Step(ctx, info.ID, "", 25)
	require.NoError(t, err)

	t.Run("newest first by default", func(t *testing.T) {
		history, err := svc.GetHistory(ctx, info.ID, service.HistoryOptions{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 25, history.TotalTicks)
		assert.Equal(t, 3, history.TotalPages)
		require.Len(t, history.Ticks, 10)
		assert.Equal(t, 25, history.Ticks[0].Tick)
		assert.Equal(t, 16, history.Ticks[9].Tick)
		assert.True(t, history.HasNext)
		assert.False(t, history.HasPrevious)
	})

	t.Run("last page", func(t *testing.T) {
		history, err := svc.GetHistory(ctx, info.ID, service.HistoryOptions{Page: 3, Limit: 10})
		require.NoError(t, err)
		require.Len(t, history.Ticks, 5)
		assert.Equal(t, 5, history.Ticks[0].Tick)
		assert.Equal(t, 1, history.Ticks[4].Tick)
		assert.False(t, history.HasNext)
	})

	t.Run("ascending", func(t *testing.T) {
		history, err := svc.GetHistory(ctx, info.ID, service.HistoryOptions{Page: 1, Limit: 10, Order: "asc"})
		require.NoError(t, err)
		require.Len(t, history.Ticks, 10)
		assert.Equal(t, 1, history.Ticks[0].Tick)
	})

	t.Run("past the end", func(t *testing.T) {
		history, err := svc.GetHistory(ctx, info.ID, service.HistoryOptions{Page: 9, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, history.Ticks)
		assert.NotNil(t, history.Ticks)
	})

	t.Run("limit clamped", func(t *testing.T) {
		history, err := svc.GetHistory(ctx, info.ID, service.HistoryOptions{Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, 100, history.PageSize)
		assert.Len(t, history.Ticks, 25)
	})
}

func TestConfigs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	configs, err := svc.ListConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, "corridor", configs[0].ConfigID)
	assert.Equal(t, 5, configs[0].Width)
	assert.Equal(t, 3, configs[0].Height)

	config, err := svc.LoadConfig(ctx, "single")
	require.NoError(t, err)
	assert.Equal(t, "single", config.Name)

	saved := testConfig("saved", "####", "#  #", "####")
	require.NoError(t, svc.SaveConfig(ctx, "saved", saved))
	info := createSession(t, svc, "saved")
	assert.Equal(t, 2, info.GameState.ItemsLeft)
}
