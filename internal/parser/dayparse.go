// Package parser reads the day a task belongs to from free text such as
// "tomorrow buy milk" or "next fri call mom".
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cwarden/wkcal/internal/week"
)

// Kind says how the day was given.
type Kind int

const (
	// KindNone means no day was found; Date is today.
	KindNone Kind = iota
	// KindWeekday is a bare weekday name such as "friday".
	KindWeekday
	// KindDate is anything resolving to a concrete date.
	KindDate
)

type ParsedDay struct {
	Kind    Kind
	Date    time.Time
	Weekday time.Weekday
	Text    string // Remaining text after the day
}

// Key returns the day key to store under. In weekday mode everything maps
// to a weekday name; in dates mode everything maps to an ISO date.
func (p *ParsedDay) Key(dates bool) string {
	if p.Kind == KindWeekday && !dates {
		return week.WeekdayKey(p.Weekday)
	}
	if dates {
		return week.DateKey(p.Date)
	}
	return week.WeekdayKey(p.Date.Weekday())
}

type DayParser struct {
	now      time.Time
	location *time.Location
}

func NewDayParser() *DayParser {
	return &DayParser{
		now:      time.Now(),
		location: time.Local,
	}
}

func (p *DayParser) SetNow(now time.Time) {
	p.now = now
	p.location = now.Location()
}

var (
	weekdayNames = `mon|monday|tue|tues|tuesday|wed|wednesday|thu|thur|thurs|thursday|fri|friday|sat|saturday|sun|sunday`
	relWeekdayRe = regexp.MustCompile(`^(next|this)\s+(` + weekdayNames + `)\b`)
	bareWeekday  = regexp.MustCompile(`^(` + weekdayNames + `)\b`)
	inRe         = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks)\b`)
	fromNowRe    = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks)\s+from\s+(now|today)\b`)
	isoDateRe    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})\b`)
	dateRe       = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	shortDateRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\b`)
	monthNameRe  = regexp.MustCompile(`^(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)\s+(\d{1,2})(?:,?\s+(\d{4}))?\b`)
)

// Parse finds a day at the start of input. Input without one resolves to
// today with Kind KindNone.
func (p *DayParser) Parse(input string) (*ParsedDay, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	if result, ok := p.parseRelativeDate(input); ok {
		return result, nil
	}
	result, ok, err := p.parseAbsoluteDate(input)
	if err != nil {
		return nil, err
	}
	if ok {
		return result, nil
	}

	today := p.today()
	return &ParsedDay{Kind: KindNone, Date: today, Weekday: today.Weekday(), Text: input}, nil
}

func (p *DayParser) parseRelativeDate(input string) (*ParsedDay, bool) {
	lower := strings.ToLower(input)

	dated := func(date time.Time, rest string) (*ParsedDay, bool) {
		return &ParsedDay{Kind: KindDate, Date: date, Weekday: date.Weekday(), Text: strings.TrimSpace(rest)}, true
	}

	for _, word := range []string{"today", "tomorrow", "tmrw", "yesterday"} {
		if lower != word && !strings.HasPrefix(lower, word+" ") {
			continue
		}
		offset := 0
		switch word {
		case "tomorrow", "tmrw":
			offset = 1
		case "yesterday":
			offset = -1
		}
		return dated(p.today().AddDate(0, 0, offset), input[len(word):])
	}

	// Next/this weekday
	if matches := relWeekdayRe.FindStringSubmatch(lower); matches != nil {
		weekday, _ := week.ParseWeekday(matches[2])
		return dated(p.findNextWeekday(weekday, matches[1] == "next"), input[len(matches[0]):])
	}

	// In N days/weeks
	if matches := inRe.FindStringSubmatch(lower); matches != nil {
		return dated(p.offset(matches[1], matches[2]), input[len(matches[0]):])
	}

	// N days/weeks from now
	if matches := fromNowRe.FindStringSubmatch(lower); matches != nil {
		return dated(p.offset(matches[1], matches[2]), input[len(matches[0]):])
	}

	// Bare weekday
	if matches := bareWeekday.FindStringSubmatch(lower); matches != nil {
		weekday, _ := week.ParseWeekday(matches[1])
		return &ParsedDay{
			Kind:    KindWeekday,
			Date:    p.findNextWeekday(weekday, false),
			Weekday: weekday,
			Text:    strings.TrimSpace(input[len(matches[0]):]),
		}, true
	}

	return nil, false
}

func (p *DayParser) parseAbsoluteDate(input string) (*ParsedDay, bool, error) {
	var (
		year, day int
		month     time.Month
		n         int
	)

	if matches := isoDateRe.FindStringSubmatch(input); matches != nil {
		year, _ = strconv.Atoi(matches[1])
		m, _ := strconv.Atoi(matches[2])
		month = time.Month(m)
		day, _ = strconv.Atoi(matches[3])
		n = len(matches[0])
	} else if matches := dateRe.FindStringSubmatch(input); matches != nil {
		// MM/DD/YYYY
		m, _ := strconv.Atoi(matches[1])
		month = time.Month(m)
		day, _ = strconv.Atoi(matches[2])
		year, _ = strconv.Atoi(matches[3])
		n = len(matches[0])
	} else if matches := shortDateRe.FindStringSubmatch(input); matches != nil {
		// MM/DD (assume current year)
		m, _ := strconv.Atoi(matches[1])
		month = time.Month(m)
		day, _ = strconv.Atoi(matches[2])
		year = p.now.Year()
		n = len(matches[0])
	} else if matches := monthNameRe.FindStringSubmatch(strings.ToLower(input)); matches != nil {
		month = parseMonth(matches[1])
		day, _ = strconv.Atoi(matches[2])
		year = p.now.Year()
		if matches[3] != "" {
			year, _ = strconv.Atoi(matches[3])
		}
		n = len(matches[0])
	} else {
		return nil, false, nil
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, p.location)
	// time.Date normalizes out-of-range values; reject those instead.
	if date.Month() != month || date.Day() != day {
		return nil, false, fmt.Errorf("invalid date: %s", input[:n])
	}
	return &ParsedDay{Kind: KindDate, Date: date, Weekday: date.Weekday(), Text: strings.TrimSpace(input[n:])}, true, nil
}

func (p *DayParser) offset(count, unit string) time.Time {
	n, _ := strconv.Atoi(count)
	if strings.HasPrefix(unit, "week") {
		n *= 7
	}
	return p.today().AddDate(0, 0, n)
}

func parseMonth(s string) time.Month {
	switch s {
	case "jan", "january":
		return time.January
	case "feb", "february":
		return time.February
	case "mar", "march":
		return time.March
	case "apr", "april":
		return time.April
	case "may":
		return time.May
	case "jun", "june":
		return time.June
	case "jul", "july":
		return time.July
	case "aug", "august":
		return time.August
	case "sep", "sept", "september":
		return time.September
	case "oct", "october":
		return time.October
	case "nov", "november":
		return time.November
	default:
		return time.December
	}
}

// findNextWeekday returns the first target on or after today, or strictly
// after today when skipToday is set.
func (p *DayParser) findNextWeekday(target time.Weekday, skipToday bool) time.Time {
	date := p.today()
	daysUntilTarget := (int(target) - int(date.Weekday()) + 7) % 7

	if daysUntilTarget == 0 && skipToday {
		daysUntilTarget = 7
	}

	return date.AddDate(0, 0, daysUntilTarget)
}

func (p *DayParser) today() time.Time {
	return week.Midnight(p.now.In(p.location))
}
