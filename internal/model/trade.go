package model

import "time"

// ExitReason explains why a simulated position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
)

// Trade is one sealed simulated trade from the backtest ledger.
// All fields are final once the position closes; trades are append-only.
type Trade struct {
	Ticker     string     `json:"ticker"`
	Direction  Operation  `json:"direction"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price"`
	EntryTime  time.Time  `json:"entry_time"`
	ExitTime   time.Time  `json:"exit_time"`
	ExitReason ExitReason `json:"exit_reason"`
	ReturnPct  float64    `json:"return_pct"`
}

// Won reports whether the trade closed with a positive return.
func (t Trade) Won() bool { return t.ReturnPct > 0 }

// BacktestStats aggregates a closed-trade ledger.
// CumReturn is a simple sum of per-trade returns, not compounded.
type BacktestStats struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`   // percent
	AvgReturn   float64 `json:"avg_return"` // percent per trade
	CumReturn   float64 `json:"cum_return"` // percent, simple sum
}

// ComputeStats builds aggregate statistics from a trade ledger.
func ComputeStats(trades []Trade) BacktestStats {
	stats := BacktestStats{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return stats
	}
	for _, t := range trades {
		if t.Won() {
			stats.Wins++
		} else {
			stats.Losses++
		}
		stats.CumReturn += t.ReturnPct
	}
	stats.WinRate = float64(stats.Wins) / float64(stats.TotalTrades) * 100
	stats.AvgReturn = stats.CumReturn / float64(stats.TotalTrades)
	return stats
}
