package portfel

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 format used to persist dates.
const DateFormat = "2006-01-02"

// readDateFormat is permissive on read: single-digit month and day are accepted.
const readDateFormat = "2006-1-2"

// Date is a day-granularity date. Holdings and cash flows are dated by day;
// intraday timing is irrelevant to cost basis and XIRR.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// ParseDate parses an ISO-8601 date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t.Date()), nil
}

// time returns the canonical time for the day, midnight UTC.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int { return d.y }

func (d Date) Month() time.Month { return d.m }

func (d Date) Day() int { return d.d }

func (d Date) String() string { return d.time().Format(DateFormat) }

func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns the date shifted by the given number of days.
func (d Date) Add(days int) Date { return NewDate(d.y, d.m, d.d+days) }

// DaysSince returns the number of whole days elapsed since x.
func (d Date) DaysSince(x Date) int {
	return int(d.time().Sub(x.time()) / (24 * time.Hour))
}

// Time returns the canonical time.Time for the day.
func (d Date) Time() time.Time { return d.time() }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
