package indicator

// Trend is the long-term trend direction.
type Trend string

const (
	TrendUndefined Trend = "UNDEFINED"
	TrendUp        Trend = "UP"
	TrendDown      Trend = "DOWN"
)

// Long-term trend moving average windows, sized for roughly one and three
// months of daily bars.
const (
	TrendShortWindow = 21
	TrendLongWindow  = 63
)

// LongTermTrend compares SMA(21) against SMA(63) of the closes. Direction is
// Up when the short average is above the long one; strength is the absolute
// gap as a percentage of the long average. Undefined (with strength 0) until
// both averages exist.
func LongTermTrend(closes []float64) (Trend, float64) {
	short := LastValue(SMA(closes, TrendShortWindow))
	long := LastValue(SMA(closes, TrendLongWindow))
	if !Defined(short) || !Defined(long) {
		return TrendUndefined, 0
	}
	strength := (short - long) / long * 100
	if short > long {
		return TrendUp, strength
	}
	if strength < 0 {
		strength = -strength
	}
	return TrendDown, strength
}

// LastValue returns the final element of the series, NaN when empty.
func LastValue(values []float64) float64 {
	if len(values) == 0 {
		return Undefined()
	}
	return values[len(values)-1]
}
