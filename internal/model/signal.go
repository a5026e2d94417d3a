package model

// Operation is the trade direction a signal recommends.
type Operation string

const (
	OperationBuy  Operation = "BUY"
	OperationSell Operation = "SELL"
)

// ActionableThreshold is the minimum winning score for a signal to be acted on.
const ActionableThreshold = 3

// Score is the momentum scorer's output for one bar: the weighted vote of all
// rule groups plus ATR-derived stop levels. Produced fresh per bar, never
// accumulated across bars.
type Score struct {
	BuyScore  float64  `json:"buy_score"`
	SellScore float64  `json:"sell_score"`
	Messages  []string `json:"messages"`
	StopLoss  float64  `json:"stop_loss"`
	StopGain  float64  `json:"stop_gain"`
}

// Operation resolves the direction. Ties resolve to Sell; the comparison is
// strict.
func (s Score) Operation() Operation {
	if s.BuyScore > s.SellScore {
		return OperationBuy
	}
	return OperationSell
}

// Winning returns the winning side's score.
func (s Score) Winning() float64 {
	if s.BuyScore > s.SellScore {
		return s.BuyScore
	}
	return s.SellScore
}

// Confidence returns winner/(buy+sell)*100 in [0,100], or 0 when no rule fired.
func (s Score) Confidence() float64 {
	total := s.BuyScore + s.SellScore
	if total <= 0 {
		return 0
	}
	return s.Winning() / total * 100
}

// Actionable reports whether the signal is strong enough to act on:
// the winning score must be strictly greater than the other and at least 3.
func (s Score) Actionable() bool {
	if s.BuyScore == s.SellScore {
		return false
	}
	return s.Winning() >= ActionableThreshold
}

// TargetZones are the buy/sell price zones derived independently of the score.
// After clamping, BuyStrong <= current price <= SellStrong always holds.
type TargetZones struct {
	BuyStrong    float64 `json:"buy_strong"`
	BuyModerate  float64 `json:"buy_moderate"`
	SellStrong   float64 `json:"sell_strong"`
	SellModerate float64 `json:"sell_moderate"`
}

// Advice is the plain structured record handed to notifiers. The core fills
// it; only the notification layer knows about message formatting.
type Advice struct {
	Ticker     string    `json:"ticker"`
	Price      float64   `json:"price"`
	Operation  Operation `json:"operation"`
	Confidence float64   `json:"confidence"`
	StopLoss   float64   `json:"stop_loss"`
	StopGain   float64   `json:"stop_gain"`
	Messages   []string  `json:"messages"`
}

// Opportunity is one row of a multi-instrument ranking: current score plus
// backtest statistics folded into a single sortable number.
type Opportunity struct {
	Ticker         string    `json:"ticker"`
	Price          float64   `json:"price"`
	Operation      Operation `json:"operation"`
	AggregateScore float64   `json:"aggregate_score"`
	Confidence     float64   `json:"confidence"`
	RSI            float64   `json:"rsi"`
	WinRate        float64   `json:"win_rate"`
	AvgReturn      float64   `json:"avg_return"`
	StopLoss       float64   `json:"stop_loss"`
	StopGain       float64   `json:"stop_gain"`
	Messages       []string  `json:"messages"`
}
