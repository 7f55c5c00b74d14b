package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-matcher/internal/corpus"
)

var corpusInfoCmd = &cobra.Command{
	Use:   "corpus-info",
	Short: "Print summary information about a corpus artifact",
	RunE:  runCorpusInfo,
}

var corpusInfoPath string

func init() {
	corpusInfoCmd.Flags().StringVarP(&corpusInfoPath, "corpus", "c", "", "Path to the corpus artifact JSON (defaults to CORPUS_PATH env var)")

	rootCmd.AddCommand(corpusInfoCmd)
}

func runCorpusInfo(_ *cobra.Command, _ []string) error {
	path := corpusInfoPath
	if path == "" {
		path = os.Getenv("CORPUS_PATH")
	}
	if path == "" {
		return fmt.Errorf("--corpus flag or CORPUS_PATH env var is required")
	}

	corp, err := corpus.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	fmt.Printf("Version:      %s\n", corp.Version())
	fmt.Printf("Model:        %s\n", corp.Model())
	fmt.Printf("Dimensions:   %d\n", corp.Dimensions())
	fmt.Printf("Careers:      %d\n", corp.Len())
	if !corp.GeneratedAt().IsZero() {
		fmt.Printf("Generated at: %s\n", corp.GeneratedAt().Format("2006-01-02 15:04:05 UTC"))
	}

	counts := make(map[string]int)
	for _, record := range corp.Records() {
		counts[record.Category]++
	}

	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	fmt.Printf("\nCategories:\n")
	for _, category := range categories {
		fmt.Printf("  %-40s %d\n", category, counts[category])
	}

	return nil
}
