package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"finanalyzer/pkg/core/errs"
)

const defaultQwenURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

// QwenProvider calls Alibaba DashScope's native text-generation API.
type QwenProvider struct {
	BaseURL string // defaults to the hosted endpoint
}

var _ Provider = (*QwenProvider)(nil)

type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		// Some DashScope endpoints return text directly in output.
		Text string `json:"text"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (p *QwenProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("DASHSCOPE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("QWEN_API_KEY")
	}
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", errs.Validation("DASHSCOPE_API_KEY or QWEN_API_KEY not set", nil)
	}

	model := "qwen-max"
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	reqBody := map[string]interface{}{
		"model": model,
		"input": map[string]interface{}{
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt},
				{"role": "user", "content": prompt},
			},
		},
		"parameters": map[string]interface{}{
			"result_format": "message",
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errs.ExternalAPI("encoding qwen request", err)
	}

	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = defaultQwenURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errs.ExternalAPI("creating qwen request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := llmHTTPClient.Do(req)
	if err != nil {
		return "", errs.ExternalAPI("calling qwen", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errs.ExternalAPI("reading qwen response", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", errs.ExternalAPI(fmt.Sprintf("qwen status %d: %s", res.StatusCode, body), nil)
	}

	var parsed qwenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errs.ExternalAPI("decoding qwen response", err)
	}
	if parsed.Code != "" {
		return "", errs.ExternalAPI(fmt.Sprintf("qwen: %s - %s", parsed.Code, parsed.Message), nil)
	}
	if len(parsed.Output.Choices) > 0 {
		return parsed.Output.Choices[0].Message.Content, nil
	}
	if parsed.Output.Text != "" {
		return parsed.Output.Text, nil
	}
	return "", errs.ExternalAPI("qwen returned an empty response", nil)
}

func (p *QwenProvider) AdaptInstructions(raw string) string {
	return raw
}
