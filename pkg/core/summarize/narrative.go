package summarize

import (
	"context"
	"os"
	"strings"

	gai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"finanalyzer/pkg/core/errs"
)

const defaultNarrativeModel = "gemini-1.5-flash"

// NarrativeClient is a direct Gemini client for the executive narrative,
// separate from the pluggable provider stack so narrative quality does not
// change when the routing config swaps the summary model.
type NarrativeClient struct {
	apiKey string
	model  string
}

func NewNarrativeClient(apiKey, model string) *NarrativeClient {
	if model == "" {
		model = defaultNarrativeModel
	}
	return &NarrativeClient{apiKey: apiKey, model: model}
}

// NarrativeClientFromEnv returns nil when GEMINI_API_KEY is absent.
func NarrativeClientFromEnv() *NarrativeClient {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		return nil
	}
	return NewNarrativeClient(key, "")
}

// Generate sends one prompt and concatenates the text parts of the reply.
func (c *NarrativeClient) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	client, err := gai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", errs.ExternalAPI("creating narrative client", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.model)
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(512)
	if systemPrompt != "" {
		model.SystemInstruction = &gai.Content{
			Parts: []gai.Part{gai.Text(systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, gai.Text(prompt))
	if err != nil {
		return "", errs.ExternalAPI("narrative generation failed", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errs.ExternalAPI("narrative model returned no candidates", nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(gai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}
