// Package backtest replays the momentum scorer bar-by-bar over historical
// data as a single-position state machine, producing a sealed trade ledger
// and aggregate statistics.
package backtest

import (
	"fmt"
	"time"

	"stocksignalsv1/internal/analysis"
	"stocksignalsv1/internal/indicator"
	"stocksignalsv1/internal/model"
)

// WarmupBars is the number of bars skipped before the first decision.
const WarmupBars = 20

// Result is one simulation run: the closed-trade ledger plus its statistics.
// A position still open when the data ends is discarded, not force-closed.
type Result struct {
	Ticker string
	Trades []model.Trade
	Stats  model.BacktestStats
}

// position is the simulator's open-position state. At most one exists.
type position struct {
	direction  model.Operation
	entryPrice float64
	stopLoss   float64
	takeProfit float64
	entryTime  time.Time
}

// Run walks forward from the warm-up bar through the second-to-last bar.
// On each step the scorer sees only bars up to the current index, no
// look-ahead. A decision on bar i is executed against the close of bar i+1:
// when flat, an actionable signal opens a position at the current close;
// when positioned, the next close is checked against the stop pair.
func Run(ticker string, bars []model.Bar) (*Result, error) {
	if len(bars) <= analysis.MinBars {
		return nil, fmt.Errorf("backtest needs more than %d bars, have %d: %w",
			analysis.MinBars, len(bars), indicator.ErrInsufficientData)
	}

	res := &Result{Ticker: ticker}
	var pos *position

	for i := WarmupBars; i < len(bars)-1; i++ {
		if pos == nil {
			window := bars[:i+1]
			closes := model.Closes(window)
			sc, err := analysis.Momentum(window,
				indicator.LastValue(indicator.RSI(closes, 14)),
				indicator.LastValue(indicator.SMA(closes, 5)),
				indicator.LastValue(indicator.SMA(closes, 20)))
			if err != nil {
				return nil, err
			}
			if sc.Actionable() {
				pos = &position{
					direction:  sc.Operation(),
					entryPrice: bars[i].Close,
					stopLoss:   sc.StopLoss,
					takeProfit: sc.StopGain,
					entryTime:  bars[i].TS,
				}
			}
			continue
		}

		// Positioned: execution is simulated one bar later than the
		// decision bar.
		next := bars[i+1]
		if trade, closed := pos.check(ticker, next); closed {
			res.Trades = append(res.Trades, trade)
			pos = nil
		}
	}

	res.Stats = model.ComputeStats(res.Trades)
	return res, nil
}

// check tests the next bar's close against the stop pair and seals a trade
// when one triggers. For a Long the stop fires below and the target above;
// for a Short the comparisons invert.
func (p *position) check(ticker string, next model.Bar) (model.Trade, bool) {
	if p.direction == model.OperationBuy {
		if next.Close <= p.stopLoss {
			return p.seal(ticker, next, p.stopLoss, model.ExitStopLoss,
				(p.stopLoss/p.entryPrice-1)*100), true
		}
		if next.Close >= p.takeProfit {
			return p.seal(ticker, next, p.takeProfit, model.ExitTakeProfit,
				(p.takeProfit/p.entryPrice-1)*100), true
		}
		return model.Trade{}, false
	}

	if next.Close >= p.stopLoss {
		return p.seal(ticker, next, p.stopLoss, model.ExitStopLoss,
			(p.entryPrice/p.stopLoss-1)*100), true
	}
	if next.Close <= p.takeProfit {
		return p.seal(ticker, next, p.takeProfit, model.ExitTakeProfit,
			(p.entryPrice/p.takeProfit-1)*100), true
	}
	return model.Trade{}, false
}

func (p *position) seal(ticker string, next model.Bar, exitPrice float64, reason model.ExitReason, returnPct float64) model.Trade {
	return model.Trade{
		Ticker:     ticker,
		Direction:  p.direction,
		EntryPrice: p.entryPrice,
		ExitPrice:  exitPrice,
		EntryTime:  p.entryTime,
		ExitTime:   next.TS,
		ExitReason: reason,
		ReturnPct:  returnPct,
	}
}
