package analysis

import (
	"fmt"

	"stocksignalsv1/internal/indicator"
	"stocksignalsv1/internal/model"
)

// Snapshot is the full indicator readout at the most recent bar plus the
// derived score and target zones. Ephemeral, recomputed on every call,
// never cached across bars.
type Snapshot struct {
	Price       float64
	DailyChange float64 // percent vs the previous close

	RSI   float64
	MA5   float64
	MA20  float64
	MA50  float64
	MA200 float64

	MACD       float64
	MACDSignal float64
	BollUpper  float64
	BollLower  float64

	Tenkan  float64
	Kijun   float64
	SenkouA float64
	SenkouB float64

	ADX     float64
	PlusDI  float64
	MinusDI float64
	ATR     float64

	Score model.Score
	Zones model.TargetZones

	// Zone-adjusted stop suggestion.
	StopLoss float64
	StopGain float64
}

// Analyze computes the snapshot for the latest bar of the series.
// Requires at least MinBars bars.
func Analyze(bars []model.Bar) (*Snapshot, error) {
	if len(bars) < MinBars {
		return nil, fmt.Errorf("analyze needs %d bars, have %d: %w",
			MinBars, len(bars), indicator.ErrInsufficientData)
	}

	closes := model.Closes(bars)
	last := len(closes) - 1

	snap := &Snapshot{
		Price:       closes[last],
		DailyChange: (closes[last] - closes[last-1]) / closes[last-1] * 100,
		RSI:         indicator.LastValue(indicator.RSI(closes, 14)),
		MA5:         indicator.LastValue(indicator.SMA(closes, 5)),
		MA20:        indicator.LastValue(indicator.SMA(closes, 20)),
		MA50:        indicator.LastValue(indicator.SMA(closes, 50)),
		MA200:       indicator.LastValue(indicator.SMA(closes, 200)),
	}

	macd, signal := indicator.MACD(closes, indicator.MACDFastSpan, indicator.MACDSlowSpan, indicator.MACDSignalSpan)
	snap.MACD = macd[last]
	snap.MACDSignal = signal[last]

	upper, lower := indicator.Bollinger(closes, 20)
	snap.BollUpper = upper[last]
	snap.BollLower = lower[last]

	ichi := indicator.Ichimoku(bars)
	snap.Tenkan = ichi.Tenkan[last]
	snap.Kijun = ichi.Kijun[last]
	snap.SenkouA = ichi.SenkouA[last]
	snap.SenkouB = ichi.SenkouB[last]

	adx, plusDI, minusDI := indicator.DirectionalIndex(bars, indicator.DirectionalPeriod)
	snap.ADX = indicator.LastValue(adx)
	snap.PlusDI = indicator.LastValue(plusDI)
	snap.MinusDI = indicator.LastValue(minusDI)
	snap.ATR = indicator.LastValue(indicator.ATR(bars, indicator.DirectionalPeriod))

	sc, err := Momentum(bars, snap.RSI, snap.MA5, snap.MA20)
	if err != nil {
		return nil, err
	}
	snap.Score = sc

	zones, err := Zones(bars, snap.Price)
	if err != nil {
		return nil, err
	}
	snap.Zones = zones
	snap.StopLoss, snap.StopGain = SuggestStops(sc, zones)

	return snap, nil
}

// Advice packages the snapshot into the structured record notifiers consume.
func (s *Snapshot) Advice(ticker string) model.Advice {
	return model.Advice{
		Ticker:     ticker,
		Price:      s.Price,
		Operation:  s.Score.Operation(),
		Confidence: s.Score.Confidence(),
		StopLoss:   s.StopLoss,
		StopGain:   s.StopGain,
		Messages:   s.Score.Messages,
	}
}

// HorizonTrend is one row of the multi-horizon moving-average readout.
type HorizonTrend struct {
	Horizon  string // "short", "medium", "long"
	Trend    indicator.Trend
	Strength float64 // percent gap between the pair of averages
}

// HorizonTrends compares MA5/MA20, MA20/MA50 and MA50/MA200. Horizons whose
// slower average is still undefined are omitted.
func (s *Snapshot) HorizonTrends() []HorizonTrend {
	pairs := []struct {
		name       string
		fast, slow float64
	}{
		{"short", s.MA5, s.MA20},
		{"medium", s.MA20, s.MA50},
		{"long", s.MA50, s.MA200},
	}
	var out []HorizonTrend
	for _, p := range pairs {
		if !indicator.Defined(p.fast) || !indicator.Defined(p.slow) {
			continue
		}
		t := indicator.TrendDown
		if p.fast > p.slow {
			t = indicator.TrendUp
		}
		strength := (p.fast - p.slow) / p.slow * 100
		if strength < 0 {
			strength = -strength
		}
		out = append(out, HorizonTrend{Horizon: p.name, Trend: t, Strength: strength})
	}
	return out
}
