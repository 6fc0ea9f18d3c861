package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

// Renderer formats aggregated posts into a Markdown intelligence report.
// Output is deterministic for identical inputs, the only timestamp in the
// document is the one supplied by the caller.
type Renderer struct{}

// New creates a renderer
func New() *Renderer {
	return &Renderer{}
}

// Render produces the report text and its suggested date-stamped filename
func (r *Renderer) Render(sections []domain.Section, degraded []domain.DegradedSource, generatedAt time.Time) (text, filename string) {
	var b strings.Builder

	fmt.Fprintf(&b, "# AI Competitive Intelligence Report\n\n")
	fmt.Fprintf(&b, "**Generated on:** %s\n\n", generatedAt.Format("January 2, 2006 at 3:04 PM"))

	total := 0
	for _, s := range sections {
		total += len(s.Posts)
	}
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- **New posts:** %d\n", total)
	fmt.Fprintf(&b, "- **Sources monitored:** %d\n", len(sections)+len(degraded))
	fmt.Fprintln(&b)

	for _, section := range sections {
		fmt.Fprintf(&b, "## %s\n\n", section.Source)

		if len(section.Posts) == 0 {
			fmt.Fprintf(&b, "*No new posts.*\n\n")
			continue
		}

		fmt.Fprintf(&b, "**New posts (%d):**\n\n", len(section.Posts))
		for _, post := range section.Posts {
			writePost(&b, post)
		}
	}

	if len(degraded) > 0 {
		fmt.Fprintf(&b, "## Issues\n\n")
		fmt.Fprintf(&b, "Coverage was incomplete this run, the following sources failed:\n\n")
		for _, d := range degraded {
			fmt.Fprintf(&b, "- **%s**: %s\n", d.Source, d.Reason)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintf(&b, "---\n")
	fmt.Fprintf(&b, "*Report generated automatically by ai-competitive-intel*\n")

	filename = fmt.Sprintf("competitive_intel_%s.md", generatedAt.Format("20060102_150405"))
	return b.String(), filename
}

func writePost(b *strings.Builder, post domain.Post) {
	fmt.Fprintf(b, "### %s\n\n", post.Title)

	if post.Published != nil {
		fmt.Fprintf(b, "**Date:** %s\n", post.Published.Format("2006-01-02"))
	} else {
		fmt.Fprintf(b, "**Date:** unknown\n")
	}

	fmt.Fprintf(b, "**Link:** [%s](%s)\n", post.URL, post.URL)

	if post.Summary != "" {
		fmt.Fprintf(b, "**Summary:** %s\n", post.Summary)
	} else {
		fmt.Fprintf(b, "**Summary:** *No summary available*\n")
	}

	fmt.Fprintln(b)
}
