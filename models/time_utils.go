package models

import (
	"fmt"
	"time"
)

// Period is a calendar year-month key, the grain every aggregate and forecast
// works at. The zero value is not a valid period.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" key.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("parsing period %q: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Index maps the period onto a monotonic month counter so that consecutive
// months differ by exactly one.
func (p Period) Index() int {
	return p.Year*12 + int(p.Month) - 1
}

func (p Period) Before(q Period) bool {
	return p.Index() < q.Index()
}

// AddMonths returns the period n months after p (n may be negative).
func (p Period) AddMonths(n int) Period {
	idx := p.Index() + n
	year := idx / 12
	month := idx%12 + 1
	if month <= 0 {
		month += 12
		year--
	}
	return Period{Year: year, Month: time.Month(month)}
}

func (p Period) Next() Period {
	return p.AddMonths(1)
}

// Time returns midnight UTC on the first day of the period.
func (p Period) Time() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
