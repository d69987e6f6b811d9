// Package zipcode は zippopotam.us を使った郵便番号検索の実装です。
package zipcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	core "github.com/AshithaPGowda/code-challenge/internal/core/zipcode"
)

const (
	defaultBaseURL = "https://api.zippopotam.us"
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 64 << 10
)

// Config は zippopotam クライアントの設定です。
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client は core/zipcode.Lookup の HTTP 実装です。
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type placesResponse struct {
	PostCode string `json:"post code"`
	Places   []struct {
		PlaceName         string `json:"place name"`
		State             string `json:"state"`
		StateAbbreviation string `json:"state abbreviation"`
	} `json:"places"`
}

// NewClient は Client を生成します。未設定の値は既定値で補います。
func NewClient(cfg Config, logger *zap.Logger) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Lookup は 5 桁の郵便番号から地域を取得します。
func (c *Client) Lookup(ctx context.Context, zip string) (*core.Place, error) {
	endpoint := c.baseURL + "/us/" + url.PathEscape(zip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build zip request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zip lookup request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read zip response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, core.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("zip lookup failed", zap.String("zip", zip), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("zip lookup: unexpected status %d", resp.StatusCode)
	}

	var decoded placesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode zip response: %w", err)
	}
	if len(decoded.Places) == 0 {
		return nil, core.ErrNotFound
	}

	p := decoded.Places[0]
	return &core.Place{
		ZipCode:   zip,
		City:      p.PlaceName,
		State:     p.StateAbbreviation,
		StateName: p.State,
	}, nil
}

// CloseIdleConnections は保持している接続を閉じます。
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}
