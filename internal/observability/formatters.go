// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/voice-api/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the number of cells in a metric bar
	barWidth = 20
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

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// metricBar renders score in [0,1] as a fixed-width bar.
func metricBar(score float64) string {
	filled := int(score*barWidth + 0.5)
	filled = max(0, min(barWidth, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// writeMetrics writes one bar per metric in the canonical metric order.
func writeMetrics(sb *strings.Builder, metrics types.Metrics) {
	for _, name := range types.MetricNames {
		score, ok := metrics[name]
		if !ok {
			sb.WriteString(fmt.Sprintf("  %-13s %s\n", name, "missing"))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-13s %s %.2f\n", name, metricBar(score), score))
	}
}

// PrintVoiceProfile outputs a human-readable summary of a voice profile.
func (p *Printer) PrintVoiceProfile(brandName string, profile *types.VoiceProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Brand:    %s\n", brandName))
	if profile.Version > 0 {
		sb.WriteString(fmt.Sprintf("Version:  %d\n", profile.Version))
	}
	sb.WriteString(fmt.Sprintf("Model:    %s\n", profile.LLMModel))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", profile.Source))
	sb.WriteString("\n")

	sb.WriteString("Metrics:\n")
	writeMetrics(&sb, profile.Metrics)
	sb.WriteString("\n")

	if profile.TargetDemographic != "" {
		sb.WriteString(fmt.Sprintf("Audience: %s\n\n", profile.TargetDemographic))
	}

	if len(profile.StyleGuide) > 0 {
		sb.WriteString("Style Guide:\n")
		count := min(len(profile.StyleGuide), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", profile.StyleGuide[i]))
		}
		if len(profile.StyleGuide) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.StyleGuide)-maxItemsToShow))
		}
	}

	p.printBox("BRAND VOICE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvaluation outputs the scores and suggestions of a voice evaluation.
func (p *Printer) PrintEvaluation(evaluation *types.VoiceEvaluation) {
	if evaluation == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Text:     %s\n\n", evaluation.InputText))
	sb.WriteString("Scores:\n")
	writeMetrics(&sb, evaluation.Scores)

	if len(evaluation.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		count := min(len(evaluation.Suggestions), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", evaluation.Suggestions[i]))
		}
		if len(evaluation.Suggestions) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(evaluation.Suggestions)-maxItemsToShow))
		}
	}

	p.printBox("VOICE EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSources outputs the pages a profile was generated from.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSources(urls []string, samples int) {
	if len(urls) == 0 && samples == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO INPUTS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for _, u := range urls {
		sb.WriteString(fmt.Sprintf("🌐 %s\n", u))
	}
	if samples > 0 {
		sb.WriteString(fmt.Sprintf("✎ %d writing sample(s)\n", samples))
	}

	p.printBox("INPUTS", strings.TrimSuffix(sb.String(), "\n"))
}
