package llm

import (
	"context"
	"fmt"
	"log"
	"sort"

	"finanalyzer/pkg/core/errs"
)

// RoleConfig overrides the provider or model for one analysis role.
type RoleConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

// Config is the model-routing file: a global provider plus per-role
// overrides (summary, risks, narrative).
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Roles          map[string]RoleConfig `yaml:"roles"`
}

// Manager resolves role names to concrete providers.
type Manager struct {
	config    Config
	providers map[string]Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]Provider{
			"gemini":   &GeminiProvider{},
			"deepseek": &DeepSeekProvider{},
			"qwen":     &QwenProvider{},
		},
	}
}

// GetProvider returns the provider for a role: per-role override first,
// then the global active provider, then environment detection. May be nil
// when nothing is configured.
func (m *Manager) GetProvider(role string) Provider {
	if rc, ok := m.config.Roles[role]; ok && rc.Provider != "" {
		if p, ok := m.providers[rc.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return FromEnv()
}

// Execute resolves the role, applies any per-role model override and sends
// the prompt through the provider's instruction adapter.
func (m *Manager) Execute(ctx context.Context, role string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(role)
	if provider == nil {
		return "", errs.Validation("no llm provider configured", nil)
	}

	if rc, ok := m.config.Roles[role]; ok && rc.Model != "" {
		if _, exists := options["model"]; !exists {
			merged := make(map[string]interface{}, len(options)+1)
			for k, v := range options {
				merged[k] = v
			}
			merged["model"] = rc.Model
			options = merged
		}
	}

	return provider.GenerateResponse(ctx, prompt, provider.AdaptInstructions(systemPrompt), options)
}

// SetActiveProvider switches the global default at runtime.
func (m *Manager) SetActiveProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return errs.Validation(fmt.Sprintf("provider %q not registered", name), nil)
	}
	m.config.ActiveProvider = name
	log.Printf("[LLM] active provider set to %s", name)
	return nil
}

// ActiveProvider reports the configured global provider name.
func (m *Manager) ActiveProvider() string {
	return m.config.ActiveProvider
}

// Providers lists the registered provider names in stable order.
func (m *Manager) Providers() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
