package classifier

import (
	"time"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/stretchr/testify/mock"
)

// bar is one test quotation: open is ignored by the predicates
type bar struct {
	high, low, close float64
	volume           int64
}

// dayOf builds a day for the first bar of bars, which are listed newest first
func dayOf(ma snapshots.MovingAverage, bars ...bar) Day {
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	seq := make(domain.Sequence, len(bars))
	for i, b := range bars {
		seq[i] = &domain.Quotation{
			ID:           int64(len(bars) - i),
			InstrumentID: 9,
			Date:         start.AddDate(0, 0, len(bars)-i),
			High:         b.high,
			Low:          b.low,
			Close:        b.close,
			Volume:       b.volume,
		}
	}
	return Day{Sequence: seq, Index: 0, MovingAverage: ma}
}

// flatBar is a bar without range at the given close
func flatBar(close float64, volume int64) bar {
	return bar{high: close, low: close, close: close, volume: volume}
}

type mockHealthChecker struct {
	mock.Mock
}

func (m *mockHealthChecker) result(method string, d Day) (bool, error) {
	args := m.MethodCalled(method, d)
	return args.Bool(0), args.Error(1)
}

func (m *mockHealthChecker) UpOnVolume(d Day) (bool, error)   { return m.result("UpOnVolume", d) }
func (m *mockHealthChecker) DownOnVolume(d Day) (bool, error) { return m.result("DownOnVolume", d) }
func (m *mockHealthChecker) BullishReversal(d Day) (bool, error) {
	return m.result("BullishReversal", d)
}
func (m *mockHealthChecker) BearishReversal(d Day) (bool, error) {
	return m.result("BearishReversal", d)
}
func (m *mockHealthChecker) Churning(d Day) (bool, error) { return m.result("Churning", d) }
func (m *mockHealthChecker) DistributionDay(d Day) (bool, error) {
	return m.result("DistributionDay", d)
}
func (m *mockHealthChecker) FollowThroughDay(d Day) (bool, error) {
	return m.result("FollowThroughDay", d)
}
func (m *mockHealthChecker) PocketPivot(d Day) (bool, error) { return m.result("PocketPivot", d) }
func (m *mockHealthChecker) GoodClose(d Day) (bool, error)   { return m.result("GoodClose", d) }
func (m *mockHealthChecker) BadClose(d Day) (bool, error)    { return m.result("BadClose", d) }
func (m *mockHealthChecker) CloseAboveEma21(d Day) (bool, error) {
	return m.result("CloseAboveEma21", d)
}
func (m *mockHealthChecker) CloseAboveSma50(d Day) (bool, error) {
	return m.result("CloseAboveSma50", d)
}
func (m *mockHealthChecker) Extended(d Day) (bool, error) { return m.result("Extended", d) }
