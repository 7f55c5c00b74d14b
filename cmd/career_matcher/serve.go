package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-matcher/internal/config"
	"github.com/jonathan/career-matcher/internal/corpus"
	"github.com/jonathan/career-matcher/internal/db"
	"github.com/jonathan/career-matcher/internal/embedding"
	"github.com/jonathan/career-matcher/internal/llm"
	"github.com/jonathan/career-matcher/internal/pipeline"
	"github.com/jonathan/career-matcher/internal/search"
	"github.com/jonathan/career-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for running the career match pipeline.

Configuration can be loaded from a JSON file using --config. Environment
variables fill any gaps, and command-line flags override both.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveCorpusPath string
	serveTopK       int
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveCorpusPath, "corpus", "", "Path to the corpus artifact JSON")
	serveCmd.Flags().IntVar(&serveTopK, "top-k", 0, "Candidates retrieved by vector search per run")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Config precedence: flags over config file over environment
	cfg := config.FromEnv()
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded.MergeWithDefaults(cfg)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("corpus") {
		cfg.Corpus = serveCorpusPath
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = serveTopK
	}
	cfg = cfg.MergeWithDefaults(config.Config{Port: 8080})

	if cfg.Corpus == "" {
		return fmt.Errorf("corpus artifact is required (--corpus flag, config file, or CORPUS_PATH env var)")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Loading corpus from %s...\n", cfg.Corpus)
	corp, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	fmt.Printf("Corpus loaded: %d careers (version %s)\n", corp.Len(), corp.Version())

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer llmClient.Close()

	embedder, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{APIKey: cfg.OpenAIAPIKey})
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	matcher := &pipeline.Matcher{
		Corpus:   corp,
		Engine:   search.NewEngine(corp, search.DefaultWeights),
		LLM:      llmClient,
		Embedder: embedder,
	}

	// Run history is optional: a failed connection disables it rather than
	// blocking the server
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: database connection failed, run history disabled: %v", err)
		} else {
			matcher.DB = database
		}
	}

	srv, err := server.New(server.Config{
		Port:    cfg.Port,
		Matcher: matcher,
		DB:      matcher.DB,
		TopK:    cfg.TopK,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
