// Package client is the console's HTTP client for the DjajBladi backend API.
// The backend is the authority for everything: it signs and verifies tokens,
// persists the farm data, and enforces the real permission checks. The
// console only relays requests with the stored bearer token attached.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"djajbladi-console/internal/model"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.JwtResponse, error) {
	var out model.JwtResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", loginBody{Email: req.Email, Password: req.Password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	var out model.UserResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out)
	return out, err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (model.JwtResponse, error) {
	var out model.JwtResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", "", model.RefreshRequest{RefreshToken: refreshToken}, &out)
	return out, err
}

func (c *Client) Buildings(ctx context.Context, token string) ([]model.Building, error) {
	var out []model.Building
	err := c.do(ctx, http.MethodGet, "/admin/buildings", token, nil, &out)
	return out, err
}

func (c *Client) Building(ctx context.Context, token string, id int64) (model.Building, error) {
	var out model.Building
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/buildings/%d", id), token, nil, &out)
	return out, err
}

func (c *Client) CreateBuilding(ctx context.Context, token string, req model.CreateBuildingRequest) (model.Building, error) {
	var out model.Building
	err := c.do(ctx, http.MethodPost, "/admin/buildings", token, req, &out)
	return out, err
}

func (c *Client) Batches(ctx context.Context, token string) ([]model.Batch, error) {
	var out []model.Batch
	err := c.do(ctx, http.MethodGet, "/admin/batches", token, nil, &out)
	return out, err
}

func (c *Client) CreateBatch(ctx context.Context, token string, req model.CreateBatchRequest) (model.Batch, error) {
	var out model.Batch
	err := c.do(ctx, http.MethodPost, "/admin/batches", token, req, &out)
	return out, err
}

func (c *Client) Stock(ctx context.Context, token string) ([]model.StockItem, error) {
	var out []model.StockItem
	err := c.do(ctx, http.MethodGet, "/admin/stock", token, nil, &out)
	return out, err
}

func (c *Client) StockItem(ctx context.Context, token string, id int64) (model.StockItem, error) {
	var out model.StockItem
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/stock/%d", id), token, nil, &out)
	return out, err
}

func (c *Client) CreateStockItem(ctx context.Context, token string, req model.CreateStockRequest) (model.StockItem, error) {
	var out model.StockItem
	err := c.do(ctx, http.MethodPost, "/admin/stock", token, req, &out)
	return out, err
}

func (c *Client) Users(ctx context.Context, token string) ([]model.UserResponse, error) {
	var out []model.UserResponse
	err := c.do(ctx, http.MethodGet, "/admin/users", token, nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, token string, req model.RegisterRequest) (model.UserResponse, error) {
	var out model.UserResponse
	err := c.do(ctx, http.MethodPost, "/admin/users", token, req, &out)
	return out, err
}

// loginBody strips console-only fields (remember) from the backend request.
type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) do(ctx context.Context, method string, path string, token string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}

	return nil
}

// decodeError maps the backend's error contract: field-validation failures
// carry {errors:{field:message}}, general failures carry {error|message}, and
// anything else falls back to a status-based message.
func decodeError(status int, raw []byte) error {
	var body struct {
		Errors  map[string]string `json:"errors"`
		Error   string            `json:"error"`
		Message string            `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)

	if len(body.Errors) > 0 {
		message := "validation failed"
		for _, v := range body.Errors {
			message = v
			break
		}
		return &APIError{Status: status, Message: message, Fields: body.Errors}
	}

	message := body.Error
	if message == "" {
		message = body.Message
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	return &APIError{Status: status, Message: message}
}
