package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "microsoft/phi-3-medium-128k-instruct:free"

// DefaultTimeout bounds one grading round trip. Completions are slow, so
// this is generous compared to the rest of the service.
const DefaultTimeout = 60 * time.Second

// Verdict is the structured judgement extracted from the model reply.
type Verdict struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// Client talks to the external completion endpoint that grades open
// question answers.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Config carries the endpoint settings from the environment.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type completionRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// BuildPrompt renders the grading instruction for one question and answer.
// The model is told to reply with a bare JSON object so the verdict can be
// parsed back out.
func BuildPrompt(question, answer string) string {
	var b strings.Builder
	b.WriteString("You are grading a short answer to a coding practice question.\n")
	b.WriteString("Question:\n")
	b.WriteString(question)
	b.WriteString("\n\nStudent answer:\n")
	b.WriteString(answer)
	b.WriteString("\n\nReply with only a JSON object of the form ")
	b.WriteString(`{"correct": <bool>, "explanation": "<short explanation>"}.`)
	return b.String()
}

// Grade submits the prompt and parses the model's verdict. The reply goes
// through two decode layers: the completion envelope, then the JSON object
// inside the returned text, which models often wrap in a ```json fence.
func (c *Client) Grade(ctx context.Context, prompt string) (*Verdict, error) {
	body, err := json.Marshal(completionRequest{Prompt: prompt, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grading request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build grading request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grading request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read grading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grading endpoint returned status %d", resp.StatusCode)
	}

	var completion completionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode grading response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("grading response has no choices")
	}

	text := stripFence(completion.Choices[0].Text)

	var verdict Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, fmt.Errorf("failed to decode grading verdict: %w", err)
	}
	return &verdict, nil
}

// stripFence removes a surrounding markdown code fence, with or without a
// json language tag.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
