package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/askus/askus/internal/core/domain"
)

// RenderPollMessage builds the single outbound message representing the
// poll: the question followed by a bar chart of the current totals.
func RenderPollMessage(question string, totals domain.Totals) string {
	return fmt.Sprintf("🗳️ %s\n\n📊 Results:\n%s", question, renderTotals(totals))
}

func renderTotals(totals domain.Totals) string {
	if len(totals) == 0 {
		return "No votes yet."
	}

	options := make([]string, 0, len(totals))
	for option := range totals {
		options = append(options, option)
	}
	sort.Strings(options)

	lines := make([]string, 0, len(options))
	for _, option := range options {
		count := totals[option]
		lines = append(lines, fmt.Sprintf("%s %s %d", option, strings.Repeat("█", int(count)), count))
	}
	return strings.Join(lines, "\n")
}
