package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zeusync/psyche/internal/core/psyche"
)

func since(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// renderReport writes a human readable summary of the engine state as seen
// at now.
func renderReport(w io.Writer, e *psyche.Engine, now time.Time) error {
	title := cases.Title(language.English)
	s := e.Stats()

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s, started %s\n", s.SessionID, since(s.SessionStart, now))
	fmt.Fprintf(&b, "Memories: %s of %s (%.1f%% used, network density %.2f)\n",
		humanize.Comma(int64(s.Memories)), humanize.Comma(int64(s.Capacity)), s.UsagePercent, s.NetworkDensity)
	fmt.Fprintf(&b, "Last decay: %s\n\n", since(s.LastDecay, now))

	b.WriteString(e.VirtueReport())

	b.WriteString("\nValues:\n")
	for _, a := range e.GetValueProfile() {
		fmt.Fprintf(&b, "  %-16s %5.1f  confidence %5.1f  trend %+.1f\n",
			title.String(a.Value.String()), a.Strength, a.Confidence, a.Trend)
	}

	m := e.GetHappinessMetrics()
	fmt.Fprintf(&b, "\nHappiness: %.1f (life satisfaction %.1f, eudaimonia %.1f) from %s memories, assessed %s\n",
		m.Overall, m.LifeSatisfaction, m.Eudaimonia, humanize.Comma(int64(m.SampleSize)), since(s.LastHappiness, now))
	if len(m.Influences) > 0 {
		fmt.Fprintf(&b, "Influences: %s\n", strings.Join(m.Influences, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
