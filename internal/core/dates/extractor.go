// Package dates turns free-form date phrases ("December 25", "next Monday",
// "2026-12-25") into ISO calendar dates relative to a reference clock.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/markdave123-py/Deskmate/internal/core"
)

// ISOLayout is the output format of Extract.
const ISOLayout = "2006-01-02"

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	spaces        = regexp.MustCompile(`\s+`)
	explicitYear  = regexp.MustCompile(`\b\d{4}\b`)
	monthName     = regexp.MustCompile(`(?i)\b(jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|june?|july?|aug(ust)?|sep(t(ember)?)?|oct(ober)?|nov(ember)?|dec(ember)?)\b`)
	numericDate   = regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}\b`)

	monthDayLayouts = []string{
		"January 2",
		"Jan 2",
		"2 January",
		"2 Jan",
	}
)

// Extractor resolves a phrase in three passes: a bare month and day, an
// absolute date understood by dateparse, then natural language via when.
type Extractor struct {
	now    func() time.Time
	parser *when.Parser
}

// NewExtractor returns an Extractor using now as the reference clock; nil means time.Now.
func NewExtractor(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &Extractor{now: now, parser: w}
}

// Extract returns the date as YYYY-MM-DD or core.ErrParse.
func (e *Extractor) Extract(phrase string) (string, error) {
	t, err := e.Resolve(phrase)
	if err != nil {
		return "", err
	}
	return t.Format(ISOLayout), nil
}

// Resolve is Extract without the formatting step. The time of day is zeroed.
func (e *Extractor) Resolve(phrase string) (time.Time, error) {
	base := e.now()
	clean := normalize(phrase)
	if clean == "" {
		return time.Time{}, core.ErrParse
	}

	if t, ok := monthDay(clean, base); ok {
		return t, nil
	}

	if t, err := dateparse.ParseIn(clean, base.Location()); err == nil {
		// "12/25" parses with year 0
		if t.Year() == 0 {
			if c, ok := nextOccurrence(t.Month(), t.Day(), base); ok {
				return c, nil
			}
			return time.Time{}, core.ErrParse
		}
		return rollForward(clean, dateOnly(t), base), nil
	}

	r, err := e.parser.Parse(clean, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", core.ErrParse, err)
	}
	if r == nil {
		return time.Time{}, core.ErrParse
	}
	return rollForward(clean, dateOnly(r.Time), base), nil
}

// monthDay handles a bare month and day with no year.
func monthDay(phrase string, base time.Time) (time.Time, bool) {
	for _, layout := range monthDayLayouts {
		p, err := time.Parse(layout, phrase)
		if err != nil {
			continue
		}
		return nextOccurrence(p.Month(), p.Day(), base)
	}
	return time.Time{}, false
}

// nextOccurrence picks the nearest month/day on or after the reference date.
func nextOccurrence(month time.Month, day int, base time.Time) (time.Time, bool) {
	today := dateOnly(base)
	for year := base.Year(); year <= base.Year()+8; year++ {
		c := time.Date(year, month, day, 0, 0, 0, 0, base.Location())
		// Feb 29 normalises into March outside leap years
		if c.Month() != month {
			continue
		}
		if !c.Before(today) {
			return c, true
		}
	}
	return time.Time{}, false
}

// rollForward moves a past calendar date named without a year ("on December 25th",
// "25/12 at 3pm") to its next occurrence. Relative phrases such as "yesterday"
// and anything with an explicit year are left alone.
func rollForward(phrase string, t, base time.Time) time.Time {
	if !t.Before(dateOnly(base)) || explicitYear.MatchString(phrase) {
		return t
	}
	if !monthName.MatchString(phrase) && !numericDate.MatchString(phrase) {
		return t
	}
	if c, ok := nextOccurrence(t.Month(), t.Day(), base); ok {
		return c
	}
	return t
}

func normalize(phrase string) string {
	s := strings.TrimSpace(phrase)
	s = strings.TrimRight(s, ".!?")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	return spaces.ReplaceAllString(s, " ")
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
