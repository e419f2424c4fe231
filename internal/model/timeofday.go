package model

import "fmt"

// TimeOfDay is a wall-clock time within a day, compared as minutes since
// midnight.
type TimeOfDay struct {
	Hour   int `json:"hour"`   // 0-23
	Minute int `json:"minute"` // 0-59
}

// Minutes returns the time as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Validate checks that the time is a real wall-clock value.
func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("hour must be 0-23, got %d", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("minute must be 0-59, got %d", t.Minute)
	}
	return nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// End is exclusive. Both intervals are treated as non-wrapping; this is the
// form used to validate periods and snapshots.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart.Minutes() < bEnd.Minutes() && bStart.Minutes() < aEnd.Minutes()
}

// Contains reports whether [outerStart, outerEnd) fully encloses
// [innerStart, innerEnd). Non-wrapping.
func Contains(outerStart, outerEnd, innerStart, innerEnd TimeOfDay) bool {
	return outerStart.Minutes() <= innerStart.Minutes() && innerEnd.Minutes() <= outerEnd.Minutes()
}

// InWindow reports whether a minute-of-day falls inside [winStart, winEnd).
// When winStart >= winEnd the window crosses midnight and membership is
// minute >= start OR minute < end.
func InWindow(minute int, winStart, winEnd TimeOfDay) bool {
	start, end := winStart.Minutes(), winEnd.Minutes()
	if start < end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}
