package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/bulls-and-cows/game/service"
	"github.com/wricardo/bulls-and-cows/game/session"
)

// Client talks to the bulls and cows REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) StartGame(ctx context.Context, opts service.StartOptions) (*service.GameInfo, error) {
	var game service.GameInfo
	if err := c.do(ctx, http.MethodPost, "/api/games", opts, &game); err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	return &game, nil
}

func (c *Client) GetGame(ctx context.Context, id session.ID) (*service.GameInfo, error) {
	var game service.GameInfo
	if err := c.do(ctx, http.MethodGet, "/api/games/"+id.String(), nil, &game); err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return &game, nil
}

func (c *Client) Guess(ctx context.Context, id session.ID, guess string) (*service.GuessResult, error) {
	var result service.GuessResult
	body := map[string]string{"guess": guess}
	if err := c.do(ctx, http.MethodPost, "/api/games/"+id.String()+"/guess", body, &result); err != nil {
		return nil, fmt.Errorf("guess %s: %w", guess, err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, errResp.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
