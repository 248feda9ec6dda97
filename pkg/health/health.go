// Package health checks that the emergency backends are reachable.
package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	rtruncate "github.com/muesli/reflow/truncate"
)

const defaultProbeTimeout = 5 * time.Second

// Probe status values
const (
	StatusPassing = "passing"
	StatusFailing = "failing"
	StatusSkipped = "skipped"
)

// Probe checks one backend. A nil error means the backend answered.
type Probe struct {
	Name string
	// Skip, when set, is reported instead of running Check.
	Skip  string
	Check func(ctx context.Context) error
}

// Result is the outcome of one probe.
type Result struct {
	Name    string
	Status  string
	Detail  string
	Latency time.Duration
}

// Status is the outcome of a full check
type Status struct {
	Timestamp       time.Time
	Results         []Result
	Warnings        []string
	Recommendations []string
}

// Healthy reports whether no probe failed.
func (s *Status) Healthy() bool {
	for _, r := range s.Results {
		if r.Status == StatusFailing {
			return false
		}
	}
	return true
}

// Checker runs probes against the configured backends
type Checker struct {
	probes  []Probe
	timeout time.Duration
	now     func() time.Time
}

// NewChecker creates a checker. A zero timeout uses five seconds per probe.
func NewChecker(timeout time.Duration, probes ...Probe) *Checker {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Checker{
		probes:  probes,
		timeout: timeout,
		now:     time.Now,
	}
}

// Check runs every probe in order, each bounded by the checker timeout.
func (c *Checker) Check(ctx context.Context) *Status {
	status := &Status{
		Timestamp:       c.now(),
		Warnings:        []string{},
		Recommendations: []string{},
	}

	for _, p := range c.probes {
		status.Results = append(status.Results, c.run(ctx, p))
	}

	for _, r := range status.Results {
		if r.Status == StatusFailing {
			status.Warnings = append(status.Warnings, fmt.Sprintf("%s is failing: %s", r.Name, r.Detail))
		}
	}

	c.generateRecommendations(status)
	return status
}

func (c *Checker) run(ctx context.Context, p Probe) Result {
	res := Result{Name: p.Name}
	if p.Skip != "" || p.Check == nil {
		res.Status = StatusSkipped
		res.Detail = p.Skip
		return res
	}

	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := c.now()
	err := p.Check(pctx)
	res.Latency = c.now().Sub(start)

	if err != nil {
		res.Status = StatusFailing
		res.Detail = err.Error()
		return res
	}
	res.Status = StatusPassing
	return res
}

// generateRecommendations generates actionable recommendations
func (c *Checker) generateRecommendations(status *Status) {
	for _, r := range status.Results {
		switch r.Status {
		case StatusFailing:
			status.Recommendations = append(status.Recommendations,
				fmt.Sprintf("🔧 Fix %s before relying on the emergency panel", r.Name))
		case StatusSkipped:
			if r.Detail != "" {
				status.Recommendations = append(status.Recommendations,
					fmt.Sprintf("📋 %s: %s", r.Name, r.Detail))
			}
		}
	}

	if len(status.Recommendations) == 0 {
		status.Recommendations = append(status.Recommendations,
			"✅ Emergency services look ready!")
	}
}

// FormatReport generates a formatted readiness report
func (c *Checker) FormatReport(status *Status) string {
	var sb strings.Builder

	sb.WriteString("# 🏥 Emergency Readiness Report\n\n")
	sb.WriteString(fmt.Sprintf("**Timestamp:** %s\n\n", status.Timestamp.Format("2006-01-02 15:04:05")))

	sb.WriteString("## 🔌 Backends\n")
	for _, r := range status.Results {
		line := fmt.Sprintf("- %s **%s:** %s", c.statusEmoji(r.Status), r.Name, r.Status)
		if r.Status == StatusPassing {
			line += fmt.Sprintf(" (%s)", r.Latency.Round(time.Millisecond))
		}
		sb.WriteString(line + "\n")
		if r.Status == StatusFailing && r.Detail != "" {
			sb.WriteString(fmt.Sprintf("  ```\n  %s\n  ```\n", truncate(r.Detail, 300)))
		}
	}
	sb.WriteString("\n")

	// Warnings
	if len(status.Warnings) > 0 {
		sb.WriteString("## ⚠️ Warnings\n")
		for _, warning := range status.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", warning))
		}
		sb.WriteString("\n")
	}

	// Recommendations
	sb.WriteString("## 💡 Recommendations\n")
	for _, rec := range status.Recommendations {
		sb.WriteString(fmt.Sprintf("- %s\n", rec))
	}

	return sb.String()
}

// statusEmoji returns an emoji for a given status
func (c *Checker) statusEmoji(status string) string {
	switch status {
	case StatusPassing:
		return "✅"
	case StatusFailing:
		return "❌"
	case StatusSkipped:
		return "⚪"
	default:
		return "❔"
	}
}

// truncate truncates a string to a maximum display width
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := rtruncate.String(s, uint(maxLen))
	if cut == s {
		return s
	}
	return cut + "\n... (truncated)"
}
