// Package mcp exposes bulls and cows to MCP-capable agents.
//
// The Client registers a set of tools on an MCP server and answers each tool
// call by calling the REST API, so an agent playing over MCP sees exactly the
// same games as HTTP and WebSocket clients.
//
// Tools:
//   - start_game {length, attempts, preset}
//   - guess {game_id, guess}
//   - game_history {game_id, page, limit, order}
//   - get_game {game_id}
//   - list_games
//   - list_presets
//   - game_instructions
//
// Transports:
//
// The server is reachable over stdio (server.ServeStdio) and through the
// Client's ServeHTTP, which answers one JSON-RPC message per POST request.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", version)
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal().Err(err).Msg("mcp stdio server failed")
//	}
package mcp
