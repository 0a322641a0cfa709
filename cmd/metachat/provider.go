package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/metachat"
	"github.com/fwojciec/metachat/anthropic"
	"github.com/fwojciec/metachat/gemini"
	"github.com/fwojciec/metachat/openai"
)

// resolveCompleter selects and constructs the completion gateway. All env
// var values are passed in as parameters — env is only read by the caller.
func resolveCompleter(ctx context.Context, providerFlag, apiKeyFlag, openaiEnvKey, geminiEnvKey, anthropicEnvKey string) (metachat.Completer, error) {
	provider := providerFlag

	// Auto-detect from env vars if no flag.
	if provider == "" {
		var detected []string
		if openaiEnvKey != "" {
			detected = append(detected, "openai")
		}
		if geminiEnvKey != "" {
			detected = append(detected, "gemini")
		}
		if anthropicEnvKey != "" {
			detected = append(detected, "anthropic")
		}
		switch len(detected) {
		case 1:
			provider = detected[0]
		case 0:
			return nil, fmt.Errorf("no API key found: set OPENAI_API_KEY, GEMINI_API_KEY or ANTHROPIC_API_KEY (or use --provider and --api-key flags)")
		default:
			return nil, fmt.Errorf("multiple API keys found (%v): use --provider to select", detected)
		}
	}

	// Resolve API key: explicit flag overrides env var.
	key := apiKeyFlag
	switch provider {
	case "openai":
		if key == "" {
			key = openaiEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set (use --api-key flag or environment variable)")
		}
		return openai.New(key), nil
	case "gemini":
		if key == "" {
			key = geminiEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key flag or environment variable)")
		}
		client, err := gemini.New(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	case "anthropic":
		if key == "" {
			key = anthropicEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key flag or environment variable)")
		}
		return anthropic.New(key), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"openai\", \"gemini\" or \"anthropic\"", provider)
	}
}
