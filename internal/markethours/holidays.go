package markethours

import "time"

// B3 holidays for 2026.
// Source: B3 official trading calendar.
// Format: month, day pairs.
var b3Holidays2026 = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // Confraternização Universal
	{time.February, 16}, // Carnival Monday
	{time.February, 17}, // Carnival Tuesday
	{time.April, 3},     // Good Friday
	{time.April, 21},    // Tiradentes
	{time.May, 1},       // Labour Day
	{time.June, 4},      // Corpus Christi
	{time.September, 7}, // Independence Day
	{time.October, 12},  // Nossa Senhora Aparecida
	{time.November, 2},  // Finados
	{time.November, 15}, // Proclamação da República
	{time.November, 20}, // Consciência Negra
	{time.December, 24}, // Christmas Eve (no session)
	{time.December, 25}, // Christmas
	{time.December, 31}, // New Year's Eve (no session)
}

// pre-compute for fast lookup
var holidaySet map[string]bool

func init() {
	holidaySet = make(map[string]bool, len(b3Holidays2026))
	for _, h := range b3Holidays2026 {
		key := dateKey(2026, h.month, h.day)
		holidaySet[key] = true
	}
}

// IsHoliday returns true if the date (in BRT) is a B3 holiday.
func IsHoliday(t time.Time) bool {
	brt := t.In(BRT)
	return holidaySet[dateKey(brt.Year(), brt.Month(), brt.Day())]
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, BRT).Format("2006-01-02")
}
