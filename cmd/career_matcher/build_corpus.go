package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-matcher/internal/corpus"
	"github.com/jonathan/career-matcher/internal/embedding"
)

var buildCorpusCmd = &cobra.Command{
	Use:   "build-corpus",
	Short: "Embed career source data into a searchable corpus artifact",
	Long: `Read a career source JSON file, embed every career's text representations
through the OpenAI embeddings API, and write a self-contained corpus artifact.

The artifact records the embedding model and dimensionality it was built with,
and the server refuses to mix artifacts and query embedders that disagree.`,
	RunE: runBuildCorpus,
}

var (
	buildSourcePath  string
	buildOutPath     string
	buildModel       string
	buildDimensions  int
	buildBatchSize   int
	buildConcurrency int
	buildOpenAIKey   string
)

func init() {
	buildCorpusCmd.Flags().StringVarP(&buildSourcePath, "source", "s", "", "Path to career source JSON file (required)")
	buildCorpusCmd.Flags().StringVarP(&buildOutPath, "out", "o", "corpus.json", "Path to write the corpus artifact")
	buildCorpusCmd.Flags().StringVar(&buildModel, "model", "", "Embedding model (defaults to "+embedding.DefaultModel+")")
	buildCorpusCmd.Flags().IntVar(&buildDimensions, "dimensions", 0, "Embedding dimensionality (defaults to 1536)")
	buildCorpusCmd.Flags().IntVar(&buildBatchSize, "batch-size", 0, "Texts per embedding call")
	buildCorpusCmd.Flags().IntVar(&buildConcurrency, "concurrency", 0, "Embedding calls in flight")
	buildCorpusCmd.Flags().StringVar(&buildOpenAIKey, "openai-key", "", "OpenAI API key (optional, defaults to OPENAI_API_KEY env var)")

	rootCmd.AddCommand(buildCorpusCmd)
}

func runBuildCorpus(_ *cobra.Command, _ []string) error {
	if buildSourcePath == "" {
		return fmt.Errorf("--source is required")
	}

	apiKey := buildOpenAIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable or --openai-key flag is required")
	}

	ctx := context.Background()

	sources, err := corpus.LoadSources(buildSourcePath)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	fmt.Printf("Loaded %d careers from %s\n", len(sources), buildSourcePath)

	embedder, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
		APIKey:     apiKey,
		Model:      buildModel,
		Dimensions: buildDimensions,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	artifact, err := corpus.BuildArtifact(ctx, embedder, sources, corpus.BuildOptions{
		Model:       embedder.Model(),
		Dimensions:  embedder.Dimensions(),
		BatchSize:   buildBatchSize,
		Concurrency: buildConcurrency,
		OnProgress: func(done, total int) {
			fmt.Printf("\rEmbedding %d/%d texts", done, total)
		},
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to build artifact: %w", err)
	}

	if err := artifact.Save(buildOutPath); err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}

	fmt.Printf("Corpus artifact written to %s (%d careers, version %s)\n",
		buildOutPath, len(artifact.Careers), artifact.Version)

	return nil
}
