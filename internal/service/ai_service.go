package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"lingua_tutor_backend/internal/config"
	"net/http"
	"strings"
)

// TextProvider 生成式文本服务
type TextProvider interface {
	// Available 启动时确定，运行期间不变
	Available() bool
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

var ErrProviderUnavailable = errors.New("text provider not configured")

// AIService OpenAI 兼容的 chat/completions 客户端
type AIService struct {
	config    config.AIConfig
	client    *http.Client
	available bool
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config:    cfg,
		client:    &http.Client{Timeout: cfg.Timeout()},
		available: cfg.Enabled && cfg.APIKey != "" && cfg.BaseURL != "",
	}
}

func (s *AIService) Available() bool {
	return s.available
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model     string          `json:"model"`
	Messages  []AIChatMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete 单次请求，不重试；非 200、空内容均视为失败
func (s *AIService) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if !s.available {
		return "", ErrProviderUnavailable
	}

	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(s.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode AI response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", errors.New("AI returned no content")
	}

	return result.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
