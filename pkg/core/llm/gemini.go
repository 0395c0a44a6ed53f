package llm

import (
	"context"
	"os"
	"strings"

	"google.golang.org/genai"

	"finanalyzer/pkg/core/errs"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider calls the Gemini API through the current GenAI SDK.
type GeminiProvider struct {
	Model string // defaults to defaultGeminiModel
}

var _ Provider = (*GeminiProvider)(nil)

func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", errs.Validation("GEMINI_API_KEY not set", nil)
	}

	model := p.Model
	if model == "" {
		model = defaultGeminiModel
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", errs.ExternalAPI("creating gemini client", err)
	}

	// Low temperature: summaries and risk extraction should be stable
	// across runs on the same filing.
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}
	if wantsJSON(prompt, systemPrompt, options) {
		config.ResponseMIMEType = "application/json"
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", errs.ExternalAPI("gemini generation failed", err)
	}
	return result.Text(), nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}

// wantsJSON decides whether to force a JSON MIME type: the explicit
// option wins, otherwise any mention of JSON in the prompts.
func wantsJSON(prompt, systemPrompt string, options map[string]interface{}) bool {
	if val, ok := options["response_format"].(string); ok {
		return val == "json_object"
	}
	return strings.Contains(strings.ToLower(systemPrompt), "json") ||
		strings.Contains(strings.ToLower(prompt), "json")
}
