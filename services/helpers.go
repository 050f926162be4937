package services

import (
	"errors"
	"time"
)

var (
	ErrInvalidStartTime = errors.New("start_time must be a valid RFC3339 timestamp")
	ErrInvalidEndTime   = errors.New("end_time must be a valid RFC3339 timestamp")
)

func parseTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidStartTime
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidEndTime
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrTournamentInvalidDateRange
	}
	return start, end, nil
}
