package dates

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the accepted day/month/year input format.
const Layout = "02/01/2006"

var ErrInvalidDate = errors.New("invalid date")

// Range is a pair of Unix timestamps, both at UTC midnight.
type Range struct {
	Start int64
	End   int64
}

// ToUnix converts a dd/mm/yyyy string to the Unix timestamp of that day's midnight in UTC.
func ToUnix(value string) (int64, error) {
	t, err := time.ParseInLocation(Layout, value, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("%w: %q must be dd/mm/yyyy", ErrInvalidDate, value)
	}

	return t.Unix(), nil
}

// ParseRange converts both ends of a date range and rejects a start after the end.
func ParseRange(from, to string) (Range, error) {
	start, err := ToUnix(from)
	if err != nil {
		return Range{}, err
	}

	end, err := ToUnix(to)
	if err != nil {
		return Range{}, err
	}

	if start > end {
		return Range{}, fmt.Errorf("%w: %s is after %s", ErrInvalidDate, from, to)
	}

	return Range{Start: start, End: end}, nil
}
