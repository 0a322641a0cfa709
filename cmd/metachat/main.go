// Command metachat is a terminal front-end for the meta-chat pipeline.
//
// Usage:
//
//	OPENAI_API_KEY=sk-...    metachat chat
//	GEMINI_API_KEY=gk-...    metachat chat --show-advice
//	ANTHROPIC_API_KEY=sk-... metachat sessions list
//
// The provider is auto-detected from the API key environment variables when
// --provider is omitted. Sessions persist under --data-dir as JSON documents
// by default; --store selects a Redis or MongoDB backend instead.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fwojciec/metachat"
	"github.com/fwojciec/metachat/pipeline"
	"github.com/fwojciec/metachat/registry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "metachat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best effort: a missing .env file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

// options holds the persistent flag values shared by all subcommands.
type options struct {
	provider       string
	apiKey         string
	store          string
	dataDir        string
	redisAddr      string
	mongoURI       string
	mongoDB        string
	metaPrompt     int
	enhancedPrompt int
	userLabel      string
	assistantLabel string
	debug          bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "metachat",
		Short:         "Two-stage meta-enhanced chat pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	labels := metachat.DefaultRoleLabels()
	pf := root.PersistentFlags()
	pf.StringVar(&opts.provider, "provider", "", "Provider: openai, gemini, anthropic (auto-detected from env vars if omitted)")
	pf.StringVar(&opts.apiKey, "api-key", "", "API key (overrides the provider's env var)")
	pf.StringVar(&opts.store, "store", "json", "Session store: json, memory, redis, mongo")
	pf.StringVar(&opts.dataDir, "data-dir", defaultDataDir(), "Data directory for the json store")
	pf.StringVar(&opts.redisAddr, "redis-addr", "localhost:6379", "Redis address for the redis store")
	pf.StringVar(&opts.mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB URI for the mongo store")
	pf.StringVar(&opts.mongoDB, "mongo-db", "metachat", "MongoDB database for the mongo store")
	pf.IntVar(&opts.metaPrompt, "meta-prompt", 1, "Registered prompt id for the meta pass")
	pf.IntVar(&opts.enhancedPrompt, "enhanced-prompt", 2, "Registered prompt id for the enhanced pass")
	pf.StringVar(&opts.userLabel, "user-role", labels.User, "Display label for the user role")
	pf.StringVar(&opts.assistantLabel, "assistant-role", labels.Assistant, "Display label for the assistant role")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newChatCmd(opts))
	root.AddCommand(newSessionsCmd(opts))
	root.AddCommand(newPromptsCmd())
	return root
}

// app bundles the wired pipeline collaborators for a command invocation.
type app struct {
	orch     *pipeline.Orchestrator
	registry *registry.Registry
	logger   *zap.Logger
	cleanup  func()
}

// newApp wires the store, gateway, registry and orchestrator from flags.
// The returned cleanup releases store connections and flushes the logger.
func newApp(ctx context.Context, opts *options) (*app, error) {
	logger, err := newLogger(opts.debug)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	store, closeStore, err := resolveStore(ctx, opts)
	if err != nil {
		logger.Sync() //nolint:errcheck
		return nil, err
	}

	completer, err := resolveCompleter(ctx, opts.provider, opts.apiKey,
		os.Getenv("OPENAI_API_KEY"), os.Getenv("GEMINI_API_KEY"), os.Getenv("ANTHROPIC_API_KEY"))
	if err != nil {
		closeStore()
		logger.Sync() //nolint:errcheck
		return nil, err
	}

	reg := registry.New(metachat.DefaultPrompts()...)
	orch := pipeline.New(store, reg, completer,
		pipeline.WithLogger(logger),
		pipeline.WithRetry(3, time.Second),
	)
	return &app{
		orch:     orch,
		registry: reg,
		logger:   logger,
		cleanup: func() {
			closeStore()
			logger.Sync() //nolint:errcheck
		},
	}, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return config.Build()
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".metachat"
	}
	return home + "/.metachat"
}
