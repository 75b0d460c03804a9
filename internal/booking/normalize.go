package booking

import (
	"fmt"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04"
	timeLayoutLong  = "15:04:05"
	combinedLayout  = "2006-01-02 15:04:05"
)

// NormalizeInterval interprets a calendar date and two wall-clock times in
// loc and returns the corresponding absolute UTC instants. Ambiguous or
// non-existent local times around DST transitions resolve however
// time.ParseInLocation resolves them; no special-casing.
func NormalizeInterval(date, startTime, endTime string, loc *time.Location) (time.Time, time.Time, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}

	start, err := parseLocal(date, startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseLocal(date, endTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start.UTC(), end.UTC(), nil
}

func parseLocal(date, clock string, loc *time.Location) (time.Time, error) {
	normalized := clock
	if _, err := time.Parse(timeLayout, clock); err == nil {
		normalized = clock + ":00"
	} else if _, err := time.Parse(timeLayoutLong, clock); err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", clock)
	}
	return time.ParseInLocation(combinedLayout, date+" "+normalized, loc)
}
