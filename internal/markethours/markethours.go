package markethours

import (
	"fmt"
	"time"
)

// BRT is the São Paulo timezone (UTC-3, no DST since 2019).
var BRT = time.FixedZone("BRT", -3*3600)

// B3 continuous-session hours in BRT.
const (
	OpenHour    = 10
	OpenMinute  = 0
	CloseHour   = 17
	CloseMinute = 55
)

// Poller wait times when the market is closed.
const (
	WeekendWait  = 8 * time.Hour
	OffHoursWait = 15 * time.Minute
)

// IsMarketOpen returns true if t falls within B3 trading hours
// (10:00 to 17:55 BRT, Monday to Friday, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	brt := t.In(BRT)
	wd := brt.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if IsHoliday(brt) {
		return false
	}
	hm := brt.Hour()*60 + brt.Minute()
	return hm >= OpenHour*60+OpenMinute && hm <= CloseHour*60+CloseMinute
}

// IsWeekday returns true if t is Monday to Friday.
func IsWeekday(t time.Time) bool {
	wd := t.In(BRT).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	brt := t.In(BRT)
	return IsWeekday(brt) && !IsHoliday(brt)
}

// ClosedWait returns how long a poller should sleep when the market is
// closed at t: a long weekend wait, or a short off-hours wait on weekdays.
func ClosedWait(t time.Time) time.Duration {
	if !IsWeekday(t) {
		return WeekendWait
	}
	return OffHoursWait
}

// NextOpen returns the next market open time (10:00 AM BRT on the next
// trading day). If t is before today's open on a trading day, returns
// today's open.
func NextOpen(t time.Time) time.Time {
	brt := t.In(BRT)

	todayOpen := time.Date(brt.Year(), brt.Month(), brt.Day(), OpenHour, OpenMinute, 0, 0, BRT)
	if brt.Before(todayOpen) && IsTradingDay(brt) {
		return todayOpen
	}

	d := brt.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ { // max 10 days ahead (holidays + weekends)
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), OpenHour, OpenMinute, 0, 0, BRT)
		}
		d = d.AddDate(0, 0, 1)
	}
	// Fallback: next day
	return time.Date(brt.Year(), brt.Month(), brt.Day()+1, OpenHour, OpenMinute, 0, 0, BRT)
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return "Market Open"
	}
	next := NextOpen(t)
	brt := next.In(BRT)
	return fmt.Sprintf("Market Closed - opens %s %s",
		brt.Weekday().String()[:3], brt.Format("15:04"))
}
