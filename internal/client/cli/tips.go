package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

func (a *App) Tips(ctx context.Context) error {
	tips, err := a.tips.List(ctx)
	if err != nil {
		return err
	}
	if len(tips) == 0 {
		a.println("No tips right now.")
		return nil
	}
	for _, t := range tips {
		a.printf("* %s\n  %s\n", t.Title, t.Content)
	}
	return nil
}

// Stats prints the gateway call counters and latency totals gathered so
// far in this process.
func (a *App) Stats(context.Context) error {
	families, err := a.metrics.Registry.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := mf.GetName() + "{" + strings.Join(labels, ",") + "}"

			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}

	if len(lines) == 0 {
		a.println("No backend calls yet.")
		return nil
	}
	sort.Strings(lines)
	for _, l := range lines {
		a.println(l)
	}
	return nil
}
