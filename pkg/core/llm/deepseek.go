package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"finanalyzer/pkg/core/errs"
)

const defaultDeepSeekURL = "https://api.deepseek.com/chat/completions"

// Shared by the HTTP-based providers. Generation can be slow on long
// filings, so the timeout is generous.
var llmHTTPClient = &http.Client{Timeout: 90 * time.Second}

// DeepSeekProvider calls the DeepSeek chat-completions API over plain HTTP.
type DeepSeekProvider struct {
	BaseURL string // defaults to the hosted endpoint
}

var _ Provider = (*DeepSeekProvider)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepSeekRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	Stream         bool          `json:"stream"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type deepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", errs.Validation("DEEPSEEK_API_KEY not set", nil)
	}

	model := "deepseek-chat"
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	reqBody := deepSeekRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   4096,
		Temperature: 0.2,
	}
	reqBody.ResponseFormat.Type = "text"
	if val, ok := options["response_format"].(string); ok && val == "json_object" {
		reqBody.ResponseFormat.Type = "json_object"
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errs.ExternalAPI("encoding deepseek request", err)
	}

	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = defaultDeepSeekURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errs.ExternalAPI("creating deepseek request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := llmHTTPClient.Do(req)
	if err != nil {
		return "", errs.ExternalAPI("calling deepseek", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errs.ExternalAPI("reading deepseek response", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", errs.ExternalAPI(fmt.Sprintf("deepseek status %d: %s", res.StatusCode, body), nil)
	}

	var parsed deepSeekResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errs.ExternalAPI("decoding deepseek response", err)
	}
	if parsed.Error != nil {
		return "", errs.ExternalAPI("deepseek: "+parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", errs.ExternalAPI("deepseek returned no choices", nil)
	}
	return parsed.Choices[0].Message.Content, nil
}

func (p *DeepSeekProvider) AdaptInstructions(raw string) string {
	return raw
}
