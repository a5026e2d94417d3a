package notification

import (
	"fmt"
	"strings"
	"time"

	"stocksignalsv1/internal/model"
)

// Status returns the status line for an advice, used both in alerts and for
// change detection. Empty when the signal is not actionable.
func Status(a model.Advice, actionable bool) string {
	if !actionable {
		return ""
	}
	if a.Operation == model.OperationBuy {
		return "🟢 EXCELLENT MOMENT TO BUY"
	}
	return "🔴 EXCELLENT MOMENT TO SELL"
}

// SignalAlert formats a status-change alert from an advice record.
func SignalAlert(a model.Advice, status string, trends []string, now time.Time) Alert {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 Current price: R$ %.2f\n", a.Price)
	fmt.Fprintf(&b, "📊 New status: %s\n\n", status)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", a.Confidence)
	fmt.Fprintf(&b, "Stop loss: R$ %.2f\n", a.StopLoss)
	fmt.Fprintf(&b, "Stop gain: R$ %.2f\n", a.StopGain)
	for _, t := range trends {
		b.WriteString(t)
		b.WriteByte('\n')
	}
	if len(a.Messages) > 0 {
		b.WriteByte('\n')
		for _, m := range a.Messages {
			fmt.Fprintf(&b, "• %s\n", m)
		}
	}
	fmt.Fprintf(&b, "\n⏰ %s", now.Format("02/01/2006 15:04:05"))
	return Alert{
		Level:   AlertWarning,
		Title:   fmt.Sprintf("Signal change - %s", a.Ticker),
		Message: b.String(),
	}
}

// ZoneAlert formats a target-zone price alert.
func ZoneAlert(ticker string, price, target float64, zone string, now time.Time) Alert {
	msg := fmt.Sprintf("Price reached the %s zone!\nCurrent price: R$ %.2f\nTarget price: R$ %.2f\n\n⏰ %s",
		zone, price, target, now.Format("02/01/2006 15:04:05"))
	return Alert{
		Level:   AlertInfo,
		Title:   fmt.Sprintf("Price alert - %s", ticker),
		Message: msg,
	}
}

// SharpMoveAlert formats an alert for a daily variation above the threshold.
func SharpMoveAlert(ticker string, price, changePct float64, now time.Time) Alert {
	msg := fmt.Sprintf("Daily change: %.2f%%\nCurrent price: R$ %.2f\n\n⏰ %s",
		changePct, price, now.Format("02/01/2006 15:04:05"))
	return Alert{
		Level:   AlertCritical,
		Title:   fmt.Sprintf("Sharp move detected - %s", ticker),
		Message: msg,
	}
}

// StartupAlert announces a monitoring session.
func StartupAlert(ticker string, interval time.Duration, now time.Time) Alert {
	msg := fmt.Sprintf("📈 Instrument: %s\n⏰ Started: %s\n🔄 Analysis interval: %s\n\nStatus: monitoring...",
		ticker, now.Format("02/01/2006 15:04:05"), interval)
	return Alert{
		Level:   AlertInfo,
		Title:   "Analysis bot started",
		Message: msg,
	}
}
