package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-matcher/internal/config"
	"github.com/jonathan/career-matcher/internal/corpus"
	"github.com/jonathan/career-matcher/internal/db"
	"github.com/jonathan/career-matcher/internal/embedding"
	"github.com/jonathan/career-matcher/internal/llm"
	"github.com/jonathan/career-matcher/internal/pipeline"
	"github.com/jonathan/career-matcher/internal/search"
	"github.com/jonathan/career-matcher/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run the career match pipeline once and print the results",
	Long: `Run the full match pipeline end-to-end: profile extraction -> query embedding -> vector search -> candidate scoring.

The resume comes from a plain text file. Preference answers come from a JSON
file with the five answer fields (career_goals, skills_to_develop,
work_environment, compensation, industries). Results are printed as JSON.`,
	RunE: runMatch,
}

var (
	matchConfigPath  string
	matchResumePath  string
	matchAnswersPath string
	matchCorpusPath  string
	matchTopK        int
	matchVerbose     bool
	matchAPIKey      string
	matchOpenAIKey   string
	matchDatabaseURL string
)

func init() {
	matchCmd.Flags().StringVar(&matchConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	matchCmd.Flags().StringVarP(&matchResumePath, "resume", "r", "", "Path to resume text file (required)")
	matchCmd.Flags().StringVarP(&matchAnswersPath, "answers", "a", "", "Path to preference answers JSON file (required)")
	matchCmd.Flags().StringVar(&matchCorpusPath, "corpus", "", "Path to the corpus artifact JSON")
	matchCmd.Flags().IntVar(&matchTopK, "top-k", 0, "Candidates retrieved by vector search")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print detailed pipeline progress")

	// API keys can be passed as flags, or read from env vars
	matchCmd.Flags().StringVar(&matchAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	matchCmd.Flags().StringVar(&matchOpenAIKey, "openai-key", "", "OpenAI API key (optional, defaults to OPENAI_API_KEY env var)")

	// Database URL for run persistence
	matchCmd.Flags().StringVar(&matchDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.FromEnv()
	if matchConfigPath != "" {
		loaded, err := config.LoadConfig(matchConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded.MergeWithDefaults(cfg)
	}
	if cmd.Flags().Changed("corpus") {
		cfg.Corpus = matchCorpusPath
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = matchTopK
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = matchAPIKey
	}
	if cmd.Flags().Changed("openai-key") {
		cfg.OpenAIAPIKey = matchOpenAIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = matchDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = matchVerbose
	}

	if matchResumePath == "" {
		return fmt.Errorf("--resume is required")
	}
	if matchAnswersPath == "" {
		return fmt.Errorf("--answers is required")
	}
	if cfg.Corpus == "" {
		return fmt.Errorf("corpus artifact is required (--corpus flag, config file, or CORPUS_PATH env var)")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable or --openai-key flag is required")
	}

	resumeText, err := os.ReadFile(matchResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	answersContent, err := os.ReadFile(matchAnswersPath)
	if err != nil {
		return fmt.Errorf("failed to read answers file: %w", err)
	}
	var answers types.PreferenceAnswers
	if err := json.Unmarshal(answersContent, &answers); err != nil {
		return fmt.Errorf("failed to parse answers JSON: %w", err)
	}

	request := &types.MatchRequest{
		ResumeText: string(resumeText),
		Answers:    answers,
	}

	corp, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if cfg.Verbose {
		fmt.Printf("Corpus loaded: %d careers (version %s)\n", corp.Len(), corp.Version())
	}

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

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: database connection failed, run will not be persisted: %v", err)
		} else {
			defer database.Close()
			matcher.DB = database
		}
	}

	result, err := matcher.Run(ctx, request, pipeline.RunOptions{
		TopK:    cfg.TopK,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("match run failed: %w", err)
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(output))

	return nil
}
