// Package telnyx は Telnyx Messaging API v2 による SMS 送信を提供します。
package telnyx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/notice"
)

// DefaultBaseURL は Telnyx API のベース URL です。
const DefaultBaseURL = "https://api.telnyx.com/v2"

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "i9-voice-intake/1.0"
	maxErrorBody   = 4 << 10
)

// Config は送信設定です。
type Config struct {
	APIKey     string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
}

// Sender は notice.Sender の Telnyx 実装です。
type Sender struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

var _ notice.Sender = (*Sender)(nil)

// NewSender は Sender を生成します。
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type messageRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

type messageResponse struct {
	Data struct {
		ID    string `json:"id"`
		Parts int    `json:"parts"`
		To    []struct {
			Status string `json:"status"`
		} `json:"to"`
	} `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		Code   string `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Send は SMS を送信し、API が受け付けたかどうかを返します。失敗はログに記録します。
func (s *Sender) Send(ctx context.Context, to, text string) bool {
	if s.cfg.APIKey == "" || s.cfg.FromNumber == "" {
		s.logger.Warn("sms sender is not configured",
			zap.Bool("api_key_set", s.cfg.APIKey != ""),
			zap.Bool("from_number_set", s.cfg.FromNumber != ""),
		)
		return false
	}
	if to == "" || text == "" {
		s.logger.Warn("sms recipient and text are required")
		return false
	}
	if len([]rune(text)) > notice.MaxLength {
		s.logger.Warn("sms text too long", zap.Int("length", len([]rune(text))))
		return false
	}

	start := time.Now()
	id, err := s.post(ctx, messageRequest{From: s.cfg.FromNumber, To: to, Text: text})
	if err != nil {
		s.logger.Error("sms send failed",
			zap.String("to", to),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return false
	}

	s.logger.Info("sms sent",
		zap.String("to", to),
		zap.String("message_id", id),
		zap.Duration("duration", time.Since(start)),
	)
	return true
}

func (s *Sender) post(ctx context.Context, msg messageRequest) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && len(apiErr.Errors) > 0 {
			first := apiErr.Errors[0]
			return "", fmt.Errorf("telnyx api error: status %d: %s %s: %s", resp.StatusCode, first.Code, first.Title, first.Detail)
		}
		return "", fmt.Errorf("telnyx api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return decoded.Data.ID, nil
}
