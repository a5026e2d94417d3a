// Package rank aggregates backtest statistics and current scores across many
// instruments into a sortable opportunity list.
package rank

import (
	"sort"

	"stocksignalsv1/internal/model"
)

// Build folds one instrument's backtest statistics and current score into a
// ranking entry. The aggregate awards up to 5 points for the historical win
// rate, up to 5 for the average return, then adds the buy score (or
// subtracts the sell score) of the current signal.
func Build(ticker string, price, rsi float64, stats model.BacktestStats, sc model.Score) model.Opportunity {
	agg := stats.WinRate/20 + stats.AvgReturn/2
	op := sc.Operation()
	if op == model.OperationBuy {
		agg += sc.BuyScore
	} else {
		agg -= sc.SellScore
	}
	return model.Opportunity{
		Ticker:         ticker,
		Price:          price,
		Operation:      op,
		AggregateScore: agg,
		Confidence:     sc.Confidence(),
		RSI:            rsi,
		WinRate:        stats.WinRate,
		AvgReturn:      stats.AvgReturn,
		StopLoss:       sc.StopLoss,
		StopGain:       sc.StopGain,
		Messages:       sc.Messages,
	}
}

// Sort orders opportunities in place: ascending by the signed key
// (-aggregate for Buy, raw aggregate for Sell), so the strongest Buy
// opportunities come first and weak Sells land between strong Buys and
// strong Sells.
func Sort(opps []model.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return sortKey(opps[i]) < sortKey(opps[j])
	})
}

func sortKey(o model.Opportunity) float64 {
	if o.Operation == model.OperationBuy {
		return -o.AggregateScore
	}
	return o.AggregateScore
}
