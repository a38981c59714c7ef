package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client - REST клиент сервера пула
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

func NewClient(baseURL string, client HTTPClient) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Me - текущий пользователь и его кошелёк
func (c *Client) Me(ctx context.Context) (*models.MeResponse, error) {
	var result models.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register - регистрация нового пользователя
func (c *Client) Register(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/register", creds, nil)
}

// Login - вход, сервер выставляет cookie сессии
func (c *Client) Login(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/login", creds, nil)
}

// Logout - выход
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", struct{}{}, nil)
}

// Payout - запуск распределения награды между участниками
func (c *Client) Payout(ctx context.Context, totalReward decimal.Decimal) (models.Payouts, error) {
	var result struct {
		Payouts models.Payouts `json:"payouts"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/payout", models.PayoutRequest{TotalReward: totalReward}, &result); err != nil {
		return nil, err
	}
	if result.Payouts == nil {
		return nil, fmt.Errorf("%w: payouts missing", ErrInvalidResponse)
	}
	return result.Payouts, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
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

	if resp.StatusCode != http.StatusOK {
		return HandleErrorResponse(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// сервер может вернуть ошибку и с кодом 200
	var errResp models.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return &ServerError{Status: resp.StatusCode, Reason: errResp.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResponse, err.Error())
	}
	return nil
}
