package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func sampleState() *engine.GameState {
	return &engine.GameState{
		Grid:   []string{"#####", "#P.G#", "#####"},
		Width:  5,
		Height: 3,
		Player: engine.PlayerView{
			SpriteView: engine.SpriteView{Name: "pc", Position: engine.Position{Row: 1, Col: 1}},
			Lives:      2,
			Points:     7,
			Heading:    "right",
			OnBoard:    true,
		},
		Agents: []engine.SpriteView{
			{Name: "g1", Kind: engine.KindAdversary, Position: engine.Position{Row: 1, Col: 3}},
		},
		ItemsLeft:    1,
		TotalTicks:   12,
		Danger:       "CAUTION: Adversary close",
		LocalView3x3: []string{"###", "#P.", "###"},
		Message:      "Keep going",
	}
}

// fakeAPI records the last request and answers with canned JSON per path
type fakeAPI struct {
	t        *testing.T
	method   string
	path     string
	rawQuery string
	body     map[string]interface{}
	replies  map[string]interface{}
}

func newFakeAPI(t *testing.T, replies map[string]interface{}) (*fakeAPI, *Client) {
	api := &fakeAPI{t: t, replies: replies}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return api, NewClient(server.URL)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.method, f.path, f.rawQuery = r.Method, r.URL.Path, r.URL.RawQuery
	f.body = nil
	if r.ContentLength > 0 {
		json.NewDecoder(r.Body).Decode(&f.body)
	}

	reply, ok := f.replies[r.Method+" "+r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found: " + r.URL.Path})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestClient_apiCall(t *testing.T) {
	_, client := newFakeAPI(t, map[string]interface{}{
		"GET /api/sessions/ab12/state": sampleState(),
	})

	var state engine.GameState
	require.NoError(t, client.apiCall(context.Background(), "GET", "/api/sessions/ab12/state", nil, &state))
	assert.Equal(t, 7, state.Player.Points)

	err := client.apiCall(context.Background(), "GET", "/api/sessions/zzzz/state", nil, &state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error: 500")
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	assert.Error(t, client.apiCall(context.Background(), "GET", "/api", nil, nil))
}

func TestClient_createSession(t *testing.T) {
	api, client := newFakeAPI(t, map[string]interface{}{
		"POST /api/sessions": service.SessionInfo{ID: "ab12", ConfigName: "small", GameState: sampleState()},
	})

	result, err := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]interface{}{
		"config_name": "small",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Session: ab12")
	assert.Contains(t, text, "Config: small")
	assert.Equal(t, "small", api.body["config_id"])
}

func TestClient_steer(t *testing.T) {
	api, client := newFakeAPI(t, map[string]interface{}{
		"POST /api/sessions/ab12/steer": sampleState(),
	})

	result, err := client.handleSteer(context.Background(), callRequest("steer", map[string]interface{}{
		"session_id": "ab12",
		"direction":  "right",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Heading: right")
	assert.Equal(t, "right", api.body["direction"])
}

func TestClient_step(t *testing.T) {
	api, client := newFakeAPI(t, map[string]interface{}{
		"POST /api/sessions/ab12/step": service.StepResult{
			TicksRequested: 5,
			TicksExecuted:  3,
			Heading:        "left",
			StartPos:       engine.Position{Row: 1, Col: 3},
			EndPos:         engine.Position{Row: 1, Col: 1},
			StartLives:     2,
			EndLives:       1,
			PointsDelta:    2,
			StoppedReason:  "game_over",
			Events: []engine.Event{
				{Type: engine.EventItemConsumed, Agent: "pc", Target: "item"},
				{Type: engine.EventItemConsumed, Agent: "pc", Target: "item"},
				{Type: engine.EventLifeLost, Agent: "g1", Target: "pc", Lives: 1, Position: engine.Position{Row: 1, Col: 1}},
			},
			GameOver:  true,
			GameState: sampleState(),
		},
	})

	result, err := client.handleStep(context.Background(), callRequest("step", map[string]interface{}{
		"session_id": "ab12",
		"direction":  "left",
		"ticks":      float64(5),
	}))
	require.NoError(t, err)

	assert.Equal(t, "left", api.body["direction"])
	assert.Equal(t, float64(5), api.body["ticks"])

	text := resultText(t, result)
	for _, want := range []string{
		"Ticks: 3/5",
		"(1,3) -> (1,1)",
		"Lives: 2 -> 1",
		"Points: +2",
		"Stopped: game_over",
		"Items eaten: 2",
		"g1 caught pc at (1,1) (lives 1)",
	} {
		assert.Contains(t, text, want)
	}
}

func TestClient_stepWithoutArguments(t *testing.T) {
	api, client := newFakeAPI(t, map[string]interface{}{
		"POST /api/sessions/ab12/step": service.StepResult{TicksRequested: 1, TicksExecuted: 1, GameState: sampleState()},
	})

	_, err := client.handleStep(context.Background(), callRequest("step", map[string]interface{}{"session_id": "ab12"}))
	require.NoError(t, err)
	assert.Empty(t, api.body)
}

func TestClient_missingSessionID(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	ctx := context.Background()

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"get_session":   client.handleGetSession,
		"game_state":    client.handleGameState,
		"steer":         client.handleSteer,
		"step":          client.handleStep,
		"reset_game":    client.handleReset,
		"tick_history":  client.handleTickHistory,
		"describe_cell": client.handleDescribeCell,
	}
	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(ctx, mcp.CallToolRequest{})
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), "session_id is required")
		})
	}
}

func TestClient_tickHistory(t *testing.T) {
	api, client := newFakeAPI(t, map[string]interface{}{
		"GET /api/sessions/ab12/history": service.HistoryResponse{
			Ticks: []engine.TickRecord{
				{Tick: 2, Heading: "up", PlayerPos: engine.Position{Row: 1, Col: 1}, Lives: 2, Points: 3,
					Events: []engine.Event{{Type: engine.EventLifeLost}}},
				{Tick: 1, Heading: "up", PlayerPos: engine.Position{Row: 2, Col: 1}, Lives: 3, Points: 3},
			},
			TotalTicks: 4,
			Page:       1,
			PageSize:   2,
			TotalPages: 2,
			HasNext:    true,
		},
	})

	result, err := client.handleTickHistory(context.Background(), callRequest("tick_history", map[string]interface{}{
		"session_id": "ab12",
		"page":       float64(1),
		"limit":      float64(2),
	}))
	require.NoError(t, err)

	assert.Equal(t, "limit=2&page=1", api.rawQuery)
	text := resultText(t, result)
	assert.Contains(t, text, "Page 1/2")
	assert.Contains(t, text, "2. up at (1,1) [Lives: 2, Points: 3] life_lost")
	assert.Contains(t, text, "More: page=2")
}

func TestClient_describeCell(t *testing.T) {
	_, client := newFakeAPI(t, map[string]interface{}{
		"GET /api/sessions/ab12/state": sampleState(),
	})
	ctx := context.Background()

	describe := func(row, col float64) *mcp.CallToolResult {
		result, err := client.handleDescribeCell(ctx, callRequest("describe_cell", map[string]interface{}{
			"session_id": "ab12", "row": row, "col": col,
		}))
		require.NoError(t, err)
		return result
	}

	assert.Contains(t, resultText(t, describe(0, 0)), "Wall")
	assert.Contains(t, resultText(t, describe(1, 1)), "you are here")
	assert.Contains(t, resultText(t, describe(1, 2)), "an item")

	ghost := resultText(t, describe(1, 3))
	assert.Contains(t, ghost, "ghost g1")
	assert.Contains(t, ghost, "Distance from you: 2")

	out := describe(5, 5)
	assert.True(t, out.IsError)
	assert.Contains(t, resultText(t, out), "out of bounds")
}

func TestClient_listConfigs(t *testing.T) {
	_, client := newFakeAPI(t, map[string]interface{}{
		"GET /api/configs": []service.ConfigInfo{
			{ConfigID: "classic", Name: "classic", Description: "eleven rows", Width: 33, Height: 11, Adversaries: 4, Lives: 3},
		},
	})

	result, err := client.handleListConfigs(context.Background(), callRequest("list_configs", nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "config_id: classic")
	assert.Contains(t, text, "Grid: 33x11, Ghosts: 4, Lives: 3")
}

func TestFormatGameState(t *testing.T) {
	result := formatGameState(sampleState())

	for _, field := range []string{
		"Position: (1,1)",
		"Lives: 2",
		"Points: 7",
		"Items left: 1",
		"Danger: CAUTION",
		"#P.G#",
		"g1@(1,3)",
		"Keep going",
	} {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
	assert.Equal(t, "No game state available", formatGameState(nil))
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := sampleState()
	state.GameOver = true
	assert.Contains(t, formatGameState(state), "💀 GAME OVER")

	state.Victory = true
	assert.Contains(t, formatGameState(state), "🎉 VICTORY!")
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	for _, content := range []string{
		"GAME OBJECTIVE:",
		"GRID LEGEND:",
		"RULES:",
		"MOVEMENT COMMANDS:",
		"VICTORY CONDITIONS:",
	} {
		assert.Contains(t, text, content)
	}
}
