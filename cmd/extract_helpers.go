package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rust-it-cr/log-collector/internal/config"
	"github.com/rust-it-cr/log-collector/internal/filter"
	"github.com/rust-it-cr/log-collector/internal/notification"
)

var (
	styleLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // gray
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleEmpty   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleFile    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))             // cyan
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)  // green bold
)

// extractSummary is what one successful extraction produced.
type extractSummary struct {
	source      string
	destination string
	spec        filter.Spec
	results     []filter.Result
	total       filter.Stats
	duration    time.Duration
}

func (s *extractSummary) notification() notification.Summary {
	window := ""
	if s.spec.Window != nil {
		window = s.spec.Window.String()
	}
	return notification.Summary{
		Source:      s.source,
		Destination: s.destination,
		Window:      window,
		Files:       len(s.results),
		LinesTotal:  s.total.LinesTotal,
		LinesKept:   s.total.LinesKept,
		Duration:    s.duration,
	}
}

func displayExtractHeader(out io.Writer, ec *extractConfig, spec filter.Spec, workers int) {
	fmt.Fprintf(out, "🔍 Extracting from %s\n", ec.source)

	if spec.Window != nil {
		fmt.Fprintf(out, "   %s %s\n", styleLabel.Render("window:"), spec.Window.String())
	}
	if len(spec.MustContainAll) > 0 {
		fmt.Fprintf(out, "   %s %s\n", styleLabel.Render("all of:"), quoteAll(spec.MustContainAll))
	}
	if len(spec.MustContainAny) > 0 {
		fmt.Fprintf(out, "   %s %s\n", styleLabel.Render("any of:"), quoteAll(spec.MustContainAny))
	}
	if !spec.Active() {
		fmt.Fprintf(out, "   %s\n", styleWarn.Render("no filters, copying every line"))
	}
	if spec.CaseInsensitive && (len(spec.MustContainAll) > 0 || len(spec.MustContainAny) > 0) {
		fmt.Fprintf(out, "   %s\n", styleLabel.Render("keywords ignore case"))
	}
	if ec.verbose {
		fmt.Fprintf(out, "   %s %d\n", styleLabel.Render("workers:"), workers)
	}
}

func displayExtractSummary(out io.Writer, s *extractSummary, verbose bool) {
	if verbose {
		for _, r := range s.results {
			line := fmt.Sprintf("   📄 %s: kept %d of %d lines",
				styleFile.Render(r.Group.FileName), r.Stats.LinesKept, r.Stats.LinesTotal)
			if r.Stats.LinesNoTimestamp > 0 {
				line += fmt.Sprintf(" (%d without timestamp)", r.Stats.LinesNoTimestamp)
			}
			fmt.Fprintln(out, line)
		}
	}

	if s.total.LinesKept == 0 {
		fmt.Fprintf(out, "%s\n", styleEmpty.Render("⚠️  No lines matched the filters"))
	}

	fmt.Fprintf(out, "%s Wrote %d line(s) from %d file(s) to %s\n",
		styleSuccess.Render("✅"), s.total.LinesKept, len(s.results), s.destination)
	if verbose {
		fmt.Fprintf(out, "⏱️  Took %s\n", s.duration.Round(time.Millisecond))
	}
}

// sendNotificationIfNeeded sends the summary when --notify or notification.enabled asks
// for it. Failures are reported but do not fail the extraction.
func sendNotificationIfNeeded(out io.Writer, c *config.Config, ec *extractConfig, s *extractSummary) {
	if c == nil || s == nil {
		return
	}
	if !ec.notify && !c.Notification.Enabled {
		return
	}

	nc := *c
	nc.Notification.Enabled = true

	notifier, err := notification.NewNotifier(&nc)
	if err != nil {
		fmt.Fprintf(out, "⚠️  Notification not sent: %v\n", err)
		return
	}

	if err := notifier.SendExtractionSummary(s.notification()); err != nil {
		fmt.Fprintf(out, "⚠️  %v\n", err)
		return
	}

	if ec.verbose {
		fmt.Fprintln(out, "📨 Notification sent")
	}
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
