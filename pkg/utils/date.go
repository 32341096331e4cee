package utils

import "time"

// ParseDate interpreta uma data yyyy-mm-dd; string vazia resulta em nil
func ParseDate(dateStr string, loc *time.Location) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	if loc == nil {
		loc = time.Local
	}

	date, err := time.ParseInLocation(time.DateOnly, dateStr, loc)
	if err != nil {
		return nil, err
	}

	return &date, nil
}
