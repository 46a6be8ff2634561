package domain

import (
	"fmt"
	"strings"
	"time"
)

type Period int

const (
	PeriodDay Period = iota + 1
	PeriodWeek
	PeriodMonth
	PeriodYear
)

const bucketLayout = "2006-01-02"

func ParsePeriod(tag string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "day":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	default:
		return 0, fmt.Errorf("%w: got %q", ErrInvalidPeriod, tag)
	}
}

func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	case PeriodYear:
		return "year"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// UnitDuration is the fixed lookback length of one period used by trends.
// Months and years are 30 and 365 days, not calendar-accurate.
func (p Period) UnitDuration() time.Duration {
	const day = 24 * time.Hour
	switch p {
	case PeriodDay:
		return day
	case PeriodWeek:
		return 7 * day
	case PeriodMonth:
		return 30 * day
	case PeriodYear:
		return 365 * day
	default:
		return 0
	}
}

// Bucketer maps sale timestamps to calendar bucket keys.
type Bucketer struct {
	WeekStart time.Weekday
	Location  *time.Location
}

// NewBucketer returns a Bucketer with Monday weeks in UTC.
func NewBucketer() Bucketer {
	return Bucketer{WeekStart: time.Monday, Location: time.UTC}
}

// Key returns the bucket key of t: the first calendar day of its bucket,
// formatted YYYY-MM-DD. Keys sort lexicographically in chronological order.
func (b Bucketer) Key(p Period, t time.Time) (string, error) {
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	y, m, d := t.Date()

	var start time.Time
	switch p {
	case PeriodDay:
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	case PeriodWeek:
		offset := (int(t.Weekday()) - int(b.WeekStart) + 7) % 7
		start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case PeriodMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return "", fmt.Errorf("%w: got %s", ErrInvalidPeriod, p)
	}
	return start.Format(bucketLayout), nil
}

// FormatRange renders an inclusive window as "YYYY-MM-DD to YYYY-MM-DD".
func FormatRange(start, end time.Time) string {
	return start.Format(bucketLayout) + " to " + end.Format(bucketLayout)
}
