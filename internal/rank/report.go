package rank

import (
	"fmt"
	"io"

	"stocksignalsv1/internal/model"
)

// WriteReport writes the flat ranking report: one line per instrument with
// rank, ticker, operation and confidence. The scanner persists the full rows
// separately; this is the human-readable summary.
func WriteReport(w io.Writer, opps []model.Opportunity) error {
	for i, o := range opps {
		_, err := fmt.Fprintf(w, "%2d. %-7s %-4s confidence %5.1f%%  score %6.1f  win rate %5.1f%%  avg %+.2f%%\n",
			i+1, o.Ticker, o.Operation, o.Confidence, o.AggregateScore, o.WinRate, o.AvgReturn)
		if err != nil {
			return err
		}
	}
	return nil
}
