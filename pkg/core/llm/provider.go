// Package llm routes prompts to hosted language models. Providers are
// interchangeable behind Provider; the summarizer treats a nil provider as
// template mode, so no part of the analysis pipeline requires an API key.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"finanalyzer/pkg/core/errs"
)

// Provider is one hosted model behind a common prompt interface.
//
// Recognized options: "model" (string, overrides the default model),
// "response_format" ("json_object" requests strict JSON output),
// "api_key" (string, overrides the environment key).
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions rewrites raw instructions into the form the model
	// responds to best. Current providers pass them through unchanged.
	AdaptInstructions(rawInstructions string) string
}

// New returns the provider registered under name.
func New(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		return &GeminiProvider{}, nil
	case "deepseek":
		return &DeepSeekProvider{}, nil
	case "qwen":
		return &QwenProvider{}, nil
	default:
		return nil, errs.Validation(fmt.Sprintf("unknown llm provider %q", name), nil)
	}
}

// FromEnv picks the first provider whose API key is present in the
// environment, or nil when none is. Callers treat nil as "run without
// a model".
func FromEnv() Provider {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return &GeminiProvider{}
	}
	if os.Getenv("DEEPSEEK_API_KEY") != "" {
		return &DeepSeekProvider{}
	}
	if os.Getenv("DASHSCOPE_API_KEY") != "" || os.Getenv("QWEN_API_KEY") != "" {
		return &QwenProvider{}
	}
	return nil
}
