package dialog

import "time"

// MonthGrid lays out the days of (year, month) as Monday-first week rows of
// seven cells. A zero cell is padding before the first or after the last day
// of the month. The function is pure; rendering and transport concerns stay
// elsewhere.
func MonthGrid(year int, month time.Month) [][7]int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// time.Weekday counts from Sunday; shift so Monday is column zero.
	offset := (int(first.Weekday()) + 6) % 7
	days := DaysIn(year, month)

	grid := make([][7]int, 0, 6)
	var week [7]int
	column := offset
	for day := 1; day <= days; day++ {
		week[column] = day
		column++
		if column == 7 {
			grid = append(grid, week)
			week = [7]int{}
			column = 0
		}
	}
	if column != 0 {
		grid = append(grid, week)
	}
	return grid
}

// DaysIn returns the day count of the month, February leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PrevMonth steps one month back with year rollover at January.
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// NextMonth steps one month forward with year rollover at December.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// ValidDate reports whether the triple names an existing calendar day.
func ValidDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December {
		return false
	}
	return day >= 1 && day <= DaysIn(year, month)
}
