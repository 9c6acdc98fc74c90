package engine

import (
	"sync"

	"github.com/xtding233/plinko-backend/internal/plinko"
)

const defaultWindowSize = 500

// RoundStats tracks realized return to player.
type RoundStats struct {
	Drops          int64         `json:"drops"`
	Forced         int64         `json:"forced"`
	Wagered        plinko.Amount `json:"wagered"`
	Paid           plinko.Amount `json:"paid"`
	RTP            float64       `json:"rtp"`
	WindowRTP      float64       `json:"window_rtp"`
	WindowSize     int           `json:"window_size"`
	LastMultiplier float64       `json:"last_multiplier"`
}

type round struct {
	wager, payout plinko.Amount
}

type statsRecorder struct {
	mtx    sync.RWMutex
	state  RoundStats
	window []round
}

func newStatsRecorder(windowSize int) *statsRecorder {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	return &statsRecorder{state: RoundStats{WindowSize: windowSize}}
}

func (r *statsRecorder) snapshot() RoundStats {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.state
}

func (r *statsRecorder) record(wager, payout plinko.Amount, multiplier float64, forced bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.state.Drops++
	if forced {
		r.state.Forced++
	}
	r.state.Wagered += wager
	r.state.Paid += payout
	r.state.LastMultiplier = multiplier
	if r.state.Wagered > 0 {
		r.state.RTP = float64(r.state.Paid) / float64(r.state.Wagered)
	}

	r.window = append(r.window, round{wager: wager, payout: payout})
	if len(r.window) > r.state.WindowSize {
		r.window = r.window[1:]
	}
	var wb, wp plinko.Amount
	for _, s := range r.window {
		wb += s.wager
		wp += s.payout
	}
	if wb > 0 {
		r.state.WindowRTP = float64(wp) / float64(wb)
	} else {
		r.state.WindowRTP = 0
	}
}
