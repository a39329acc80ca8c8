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

	"github.com/wricardo/bulls-and-cows/game/engine"
	"github.com/wricardo/bulls-and-cows/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, version string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer(version)
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		"Bulls and Cows",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Bulls and Cows - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Guess the secret sequence of distinct digits. Each guess is scored with
bulls (right digit, right place) and cows (right digit, wrong place).

AVAILABLE TOOLS:
- start_game: Start a game (length 4-9, optional attempts or preset)
- guess: Submit a guess for a game
- game_history: View past guesses
- get_game: Get game details
- list_games: List all games
- list_presets: List difficulty presets
- game_instructions: Get the rules and a solving strategy`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new bulls and cows game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"length": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.MinSequenceLength,
					"maximum":     engine.MaxSequenceLength,
					"description": "Number of digits in the secret (optional, preset default otherwise)",
				},
				"attempts": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"description": "Attempt allowance (optional)",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Preset name such as classic, hard or expert (optional)",
				},
			},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "guess",
		Description: "Submit a guess and get bulls and cows back",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "integer",
					"description": "Game ID",
				},
				"guess": map[string]interface{}{
					"type":        "string",
					"description": "Sequence of distinct digits, same length as the secret",
				},
			},
			Required: []string{"game_id", "guess"},
		},
	}, c.handleGuess)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_history",
		Description: "View the guesses made in a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "integer",
					"description": "Game ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Guesses per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc, default) or newest first (desc)",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleGameHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get details of a specific game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "integer",
					"description": "Game ID",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available difficulty presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of bulls and cows and a solving strategy",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers a single JSON-RPC message posted to the /mcp endpoint
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		// Notifications have no reply
		w.WriteHeader(http.StatusAccepted)
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
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

// intArg reads a JSON number argument. Strings of digits are accepted too.
func intArg(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case string:
		var n int64
		if _, err := fmt.Sscan(v, &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

func gameIDArg(args map[string]interface{}) (int64, error) {
	id, ok := intArg(args, "game_id")
	if !ok || id < 1 {
		return 0, fmt.Errorf("game_id is required and must be a positive integer")
	}
	return id, nil
}

// Tool handlers

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if length, ok := intArg(args, "length"); ok {
		body["length"] = length
	}
	if attempts, ok := intArg(args, "attempts"); ok {
		body["attempts"] = attempts
	}
	if preset, _ := args["preset"].(string); preset != "" {
		body["preset"] = preset
	}

	var game service.GameInfo
	if err := c.apiCall(ctx, "POST", "/api/games", body, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Started game %d\nLength: %d digits\nGuesses allowed: %d\n",
		game.ID, game.Length, game.GuessesLeft)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGuess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := gameIDArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	guess, _ := args["guess"].(string)
	if guess == "" {
		return mcp.NewToolResultError("guess is required"), nil
	}

	var result service.GuessResult
	err = c.apiCall(ctx, "POST", fmt.Sprintf("/api/games/%d/guess", id), map[string]string{"guess": guess}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGuessResult(&result)), nil
}

func (c *Client) handleGameHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := gameIDArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := fmt.Sprintf("/api/games/%d/history", id)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := gameIDArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var game service.GameInfo
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/games/%d", id), nil, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameInfo(&game)), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                `json:"count"`
		Games []service.GameInfo `json:"games"`
	}

	if err := c.apiCall(ctx, "GET", "/api/games", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		fmt.Fprintf(&b, "- %d: %d digits, %d guesses, %s (Created: %s)\n",
			g.ID, g.Length, g.Attempts, g.State, g.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []service.Preset
	if err := c.apiCall(ctx, "GET", "/api/presets", nil, &presets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, p := range presets {
		fmt.Fprintf(&b, "• %s\n  %s\n  Length: %d, Attempts: %d\n\n", p.Name, p.Description, p.Length, p.MaxAttempts)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Bulls and Cows - Complete Instructions

GAME OBJECTIVE:
Find the secret sequence. It is made of distinct digits from 1 to 9 and is
between 4 and 9 digits long.

SCORING:
• Bull: a digit of your guess is in the secret at the same position
• Cow: a digit of your guess is in the secret at a different position
• Every guess must have the same length as the secret
• Every guess must use distinct symbols

ATTEMPTS:
• A game with N attempts accepts N+1 scored guesses
• The guess after the allowance runs out loses the game and reveals the answer
• Once won or lost, further guesses return the same outcome and are not recorded

STRATEGY:
1. Keep a list of every sequence that is still possible
2. After each guess, drop every candidate that would not have scored the
   same bulls and cows against your guess
3. Guess one of the remaining candidates
4. Repeat until one candidate is left

For 4 digits this usually wins in 5 to 7 guesses.

TOOLS:
• start_game {length, attempts, preset}
• guess {game_id, guess}
• game_history {game_id, page, limit, order}
• get_game {game_id}
• list_games, list_presets

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatGuessResult(result *service.GuessResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Guess %s: %s\n", result.Guess, result.Message)
	switch result.Outcome {
	case engine.OutcomeFeedback:
		fmt.Fprintf(&b, "Bulls: %d, Cows: %d\n", result.Bulls, result.Cows)
	case engine.OutcomeLoss:
		fmt.Fprintf(&b, "Answer: %s\n", result.Answer)
	}
	fmt.Fprintf(&b, "Attempts used: %d\nState: %s\n", result.Attempts, result.State)
	return b.String()
}

func formatGameInfo(game *service.GameInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game %d\n", game.ID)
	fmt.Fprintf(&b, "Length: %d digits\n", game.Length)
	fmt.Fprintf(&b, "State: %s\n", game.State)
	fmt.Fprintf(&b, "Attempts used: %d\n", game.Attempts)
	if game.State == engine.InProgress {
		fmt.Fprintf(&b, "Guesses left: %d\n", game.GuessesLeft)
	}
	if game.Answer != "" {
		fmt.Fprintf(&b, "Answer: %s\n", game.Answer)
	}
	if len(game.History) > 0 {
		b.WriteString("\nGuesses:\n")
		for i, h := range game.History {
			fmt.Fprintf(&b, "%d. %s  %dB %dC\n", i+1, h.Guess, h.Bulls, h.Cows)
		}
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Guess History for game %d (Page %d/%d) - Total: %d\n\n",
		history.ID, history.Page, history.TotalPages, history.TotalGuesses)

	if len(history.Guesses) == 0 {
		b.WriteString("(no guesses)\n")
		return b.String()
	}

	for _, item := range history.Guesses {
		fmt.Fprintf(&b, "%d. %s  %dB %dC\n", item.Number, item.Guess, item.Bulls, item.Cows)
	}
	return b.String()
}
