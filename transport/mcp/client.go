package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Chase",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Chase - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Steer the player (P) through the maze and eat every item (.) while ghosts (G) wander around.
A ghost on your cell costs a life. Lose every life and the game is over.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions / get_session: Inspect sessions
- game_state: Board, lives, points and danger level
- steer: Set the heading without advancing time
- step: Optionally steer, then advance one or more ticks
- reset_game: Rebuild the board
- tick_history: View past ticks
- describe_cell: What is on one cell
- list_configs: List available mazes
- game_instructions: Full rules

NOTE: Ghosts move every tick whether you move or not. Step a few ticks at a time and re-check the board.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func directionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"up", "down", "left", "right", "none"},
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "steer",
		Description: "Set the player's heading. Time does not advance until step is called or the clock runs.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction":  directionProperty("New heading"),
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleSteer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: fmt.Sprintf("Advance the game. Every agent moves once per tick. At most %d ticks per call; stops early at game over.", engine.MaxStepTicks),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction":  directionProperty("Heading to set before stepping (optional, keeps the current heading)"),
				"ticks": map[string]interface{}{
					"type":        "number",
					"description": "Number of ticks to run (default 1)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to a freshly seeded board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick_history",
		Description: "Get the tick history, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Ticks per page (default 20, max 100)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTickHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one grid cell: obstacle or not, and which sprites are on it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row": map[string]interface{}{
					"type":        "number",
					"description": "Row, 0 at the top",
				},
				"col": map[string]interface{}{
					"type":        "number",
					"description": "Column, 0 at the left",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available maze configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules and tips",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created " + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.GameState != nil && s.GameState.GameOver {
			status = "finished"
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSteer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/steer")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction, _ := args["direction"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "POST", path, map[string]string{"direction": direction}, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Heading: %s\n\n%s", state.Player.Heading, formatGameState(&state))), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/step")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{}
	if direction, _ := args["direction"].(string); direction != "" {
		body["direction"] = direction
	}
	if ticks, ok := intArg(args, "ticks"); ok {
		body["ticks"] = ticks
	}

	var result service.StepResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleTickHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := describeCell(&state, engine.Position{Row: row, Col: col})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Ghosts: %d, Lives: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Width, cfg.Height, cfg.Adversaries, cfg.Lives)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Maze Chase - Complete Instructions

GAME OBJECTIVE:
Eat every item on the board. Items start on every open cell.

GRID LEGEND:
• # = wall
• . = item (one point each)
• P = you
• G = ghost
• (space) = empty corridor

RULES:
• Time moves in ticks. Every tick each ghost moves once, then you move once.
• You keep moving in your heading until you steer again. Walking into a wall leaves you in place.
• Moving onto an item eats it (+1 point).
• Meeting a ghost on a cell costs one life, whoever moved. With no lives left you are removed and the game is over.
• Some ghosts wander at random. Others run straight and only turn when blocked.

MOVEMENT COMMANDS:
• steer: direction = up, down, left, right (or none to stand still)
• step: optional direction plus ticks; stops early when the game ends

TIPS:
• Read the danger line in game_state before stepping many ticks.
• Step in small batches near ghosts; step long runs through empty corridors.
• local_view shows the 3x3 cells around you with you in the middle.

VICTORY CONDITIONS:
• No items left on the board.

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nClock running: %t\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.ClockRunning,
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	p := state.Player
	fmt.Fprintf(&b, "Position: %s | Lives: %d | Points: %d | Items left: %d | Heading: %s | Tick: %d\n",
		p.Position, p.Lives, p.Points, state.ItemsLeft, p.Heading, state.TotalTicks)
	if state.Danger != "" {
		fmt.Fprintf(&b, "Danger: %s\n", state.Danger)
	}
	b.WriteString("\n")

	if len(state.LocalView3x3) == 3 {
		b.WriteString("Local 3x3:\n")
		for _, row := range state.LocalView3x3 {
			b.WriteString(row + "\n")
		}
		b.WriteString("\n")
	}

	for _, row := range state.Grid {
		b.WriteString(row + "\n")
	}

	if len(state.Agents) > 0 {
		b.WriteString("\nGhosts:")
		for _, a := range state.Agents {
			fmt.Fprintf(&b, " %s@%s", a.Name, a.Position)
		}
		b.WriteString("\n")
	}

	if state.GameOver {
		if state.Victory {
			b.WriteString("\n🎉 VICTORY!")
		} else {
			b.WriteString("\n💀 GAME OVER")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatEvent(ev engine.Event) string {
	switch ev.Type {
	case engine.EventItemConsumed:
		return fmt.Sprintf("%s ate %s at %s", ev.Agent, ev.Target, ev.Position)
	case engine.EventLifeLost:
		return fmt.Sprintf("%s caught %s at %s (lives %d)", ev.Agent, ev.Target, ev.Position, ev.Lives)
	case engine.EventPlayerRemoved:
		return fmt.Sprintf("%s removed %s at %s", ev.Agent, ev.Target, ev.Position)
	}
	return string(ev.Type)
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ticks: %d/%d | Heading: %s | %s -> %s | Lives: %d -> %d | Points: %+d\n",
		result.TicksExecuted, result.TicksRequested, result.Heading,
		result.StartPos, result.EndPos, result.StartLives, result.EndLives, result.PointsDelta)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to %d ticks\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}

	// item_consumed is noisy; count it instead
	eaten := 0
	var notable []string
	for _, ev := range result.Events {
		if ev.Type == engine.EventItemConsumed {
			eaten++
			continue
		}
		notable = append(notable, formatEvent(ev))
	}
	if eaten > 0 {
		fmt.Fprintf(&b, "Items eaten: %d\n", eaten)
	}
	for _, line := range notable {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tick History (Page %d/%d), Total ticks: %d\n\n",
		history.Page, history.TotalPages, history.TotalTicks)

	for _, rec := range history.Ticks {
		fmt.Fprintf(&b, "%d. %s at %s [Lives: %d, Points: %d]",
			rec.Tick, rec.Heading, rec.PlayerPos, rec.Lives, rec.Points)
		for _, ev := range rec.Events {
			if ev.Type != engine.EventItemConsumed {
				fmt.Fprintf(&b, " %s", ev.Type)
			}
		}
		b.WriteString("\n")
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore: page=%d", history.Page+1)
	}
	return b.String()
}

func describeCell(state *engine.GameState, p engine.Position) (string, error) {
	if p.Row < 0 || p.Row >= len(state.Grid) || p.Col < 0 || p.Col >= len([]rune(state.Grid[p.Row])) {
		return "", fmt.Errorf("cell %s is out of bounds; grid is %d rows by %d columns",
			p, state.Height, state.Width)
	}
	glyph := []rune(state.Grid[p.Row])[p.Col]

	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s: '%c'\n", p, glyph)
	if glyph == '#' {
		b.WriteString("Wall - not traversable")
		return b.String(), nil
	}
	b.WriteString("Open corridor\n")

	if state.Player.OnBoard && state.Player.Position == p {
		b.WriteString("- you are here\n")
	}
	for _, a := range state.Agents {
		if a.Position == p {
			fmt.Fprintf(&b, "- ghost %s\n", a.Name)
		}
	}
	if glyph == '.' {
		b.WriteString("- an item\n")
	}
	if d := engine.ManhattanDistance(state.Player.Position, p); d > 0 {
		fmt.Fprintf(&b, "Distance from you: %d\n", d)
	}
	return b.String(), nil
}
