// Package moneygameutil holds small helpers shared by the money game module.
package moneygameutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ScheduleParser turns user-supplied schedule text into a timestamp.
type ScheduleParser interface {
	ParseSchedule(input string, now time.Time) (time.Time, error)
}

type scheduleParser struct {
	w *when.Parser
}

// NewScheduleParser creates a parser accepting RFC 3339 timestamps and
// English natural language ("saturday at 9am", "tomorrow at noon").
func NewScheduleParser() ScheduleParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &scheduleParser{w: w}
}

func (p *scheduleParser) ParseSchedule(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty schedule input")
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}

	r, err := p.w.Parse(input, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse schedule %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognized schedule input: %s", input)
	}
	return r.Time, nil
}
