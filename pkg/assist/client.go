// Package assist wraps a hosted chat-completions endpoint behind three
// task-annotation operations: analysis of a new task, improvement
// suggestions for an existing one, and open-ended chat. Every operation
// degrades to a documented deterministic fallback, so a model or transport
// failure never reaches the caller as an error.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generation parameters, pinned for output stability.
const (
	DefaultModel = "mixtral-8x7b-32768"

	defaultBaseURL = "https://api.groq.com/openai/v1"
	temperature    = 0.1
	maxTokens      = 1000
)

// Completer produces one model reply for a system instruction and a user
// prompt. A single attempt per call; no retries.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// GroqCompleter talks to the Groq chat-completions endpoint.
type GroqCompleter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGroqCompleter reads the API key from GROQ_API_KEY. A missing key is not
// rejected here; the first call fails and the operations fall back.
func NewGroqCompleter(model string) *GroqCompleter {
	if model == "" {
		model = DefaultModel
	}
	return &GroqCompleter{
		apiKey:  os.Getenv("GROQ_API_KEY"),
		baseURL: defaultBaseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-style request and returns the model's raw text.
func (g *GroqCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// Client exposes the three annotation operations over a Completer.
type Client struct {
	llm Completer
	now func() time.Time
}

// New creates a Client.
func New(llm Completer) *Client {
	return &Client{llm: llm, now: time.Now}
}

// reqID tags the diagnostic log lines of one operation invocation.
func reqID() string {
	return uuid.NewString()[:8]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// logBadReply keeps the offending raw text in the diagnostic log only; it is
// never surfaced to the caller.
func logBadReply(id, op, raw string, err error) {
	log.Printf("assist: [%s] %s reply unusable (%v): %s", id, op, err, truncate(raw, 200))
}
