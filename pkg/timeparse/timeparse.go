package timeparse

import (
	"regexp"
	"strconv"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/br"
	"github.com/olebedev/when/rules/common"
)

var parser *when.Parser

func init() {
	parser = when.New(nil)
	parser.Add(br.All...)
	parser.Add(common.All...)
}

// Matches "às 15h", "as 15:30", "às 9h15"
var hourPattern = regexp.MustCompile(`(?i)\b[àa]s?\s+(\d{1,2})(?:[:h](\d{2}))?`)

// ParseDateTime extracts a date/time phrase from free text relative to
// base. Returns nil when no phrase is found.
func ParseDateTime(text string, base time.Time) *time.Time {
	if result, err := parser.Parse(text, base); err == nil && result != nil {
		t := result.Time
		// Time-of-day phrases resolve to today even when the hour has
		// passed; push those to tomorrow
		if t.Before(base) && base.Sub(t) < 24*time.Hour {
			t = t.AddDate(0, 0, 1)
		}
		return &t
	}

	// Bare hour phrases ("às 15h") that the rule set misses
	m := hourPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return nil
	}
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
		if minute > 59 {
			minute = 0
		}
	}

	t := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
	if t.Before(base) {
		// The hour already passed today, assume tomorrow
		t = t.AddDate(0, 0, 1)
	}
	return &t
}
