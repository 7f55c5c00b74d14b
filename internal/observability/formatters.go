// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResumeProfile outputs a human-readable summary of the extracted profile.
func (p *Printer) PrintResumeProfile(profile *types.ResumeProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	if len(profile.JobTitles) > 0 {
		sb.WriteString(fmt.Sprintf("Titles:     %s\n", joinTruncated(profile.JobTitles, 40)))
	}
	sb.WriteString(fmt.Sprintf("Experience: %.1f years\n", profile.ExperienceYears))

	education := profile.Education.Level
	if education == "" {
		education = "not stated"
	}
	if len(profile.Education.Fields) > 0 {
		education += " (" + joinTruncated(profile.Education.Fields, 30) + ")"
	}
	sb.WriteString(fmt.Sprintf("Education:  %s\n", education))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", profile.Confidence))

	if len(profile.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(profile.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", profile.Skills[i]))
		}
		if len(profile.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Skills)-maxItemsToShow))
		}
	}

	p.printBox("EXTRACTED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs the top search candidates with similarity scores.
func (p *Printer) PrintCandidates(candidates []types.Candidate) {
	if len(candidates) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total candidates: %d\n\n", len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, candidates[i].Slug))
		sb.WriteString(fmt.Sprintf("    Similarity: %.4f\n", candidates[i].Similarity))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(candidates)-maxItemsToShow))
	}

	p.printBox("TOP SEARCH CANDIDATES", sb.String())
}

// PrintMatches outputs the final accepted matches with scores and rationales.
func (p *Printer) PrintMatches(matches []types.CareerMatch) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Accepted %d matches:\n\n", len(matches)))

	for i, match := range matches {
		sb.WriteString(fmt.Sprintf("#%d  %s (score %d)\n", i+1, match.Title, match.MatchScore))
		rationale := match.Rationale
		if len(rationale) > 50 {
			rationale = rationale[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s\n", rationale))
		if i < len(matches)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("FINAL MATCHES", sb.String())
}

// PrintRunMetadata outputs the run counters and stage timings.
func (p *Printer) PrintRunMetadata(metadata *types.RunMetadata) {
	if metadata == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run ID:     %s\n", metadata.RunID))
	sb.WriteString(fmt.Sprintf("Corpus:     %s\n", metadata.CorpusVersion))
	sb.WriteString(fmt.Sprintf("Candidates: %d searched, %d evaluated, %d matched\n",
		metadata.TotalCandidates, metadata.EvaluatedCount, metadata.FinalMatchCount))
	sb.WriteString("\nTimings:\n")
	sb.WriteString(fmt.Sprintf("  Extraction: %dms\n", metadata.Timings.ExtractionMs))
	sb.WriteString(fmt.Sprintf("  Embedding:  %dms\n", metadata.Timings.EmbeddingMs))
	sb.WriteString(fmt.Sprintf("  Search:     %dms\n", metadata.Timings.SearchMs))
	sb.WriteString(fmt.Sprintf("  Ranking:    %dms\n", metadata.Timings.RankingMs))
	sb.WriteString(fmt.Sprintf("  Total:      %dms", metadata.Timings.TotalMs))

	p.printBox("RUN SUMMARY", sb.String())
}

// joinTruncated joins items with commas and truncates the result
func joinTruncated(items []string, maxLen int) string {
	joined := strings.Join(items, ", ")
	if len(joined) > maxLen {
		joined = joined[:maxLen-3] + "..."
	}
	return joined
}
