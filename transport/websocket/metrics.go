package websocket

import "sync/atomic"

// Metrics counts relay activity. Safe for concurrent use.
type Metrics struct {
	Connections   int64 // currently registered
	Accepted      int64 // total connections accepted
	FramesIn      int64 // frames received from clients
	FramesOut     int64 // frames queued to clients
	Dropped       int64 // malformed frames dropped
	SlowConsumers int64 // clients removed because their queue was full
	HelloRounds   int64 // leader elections run
}

func (m *Metrics) connected() {
	atomic.AddInt64(&m.Connections, 1)
	atomic.AddInt64(&m.Accepted, 1)
}
func (m *Metrics) disconnected() { atomic.AddInt64(&m.Connections, -1) }
func (m *Metrics) frameIn()      { atomic.AddInt64(&m.FramesIn, 1) }
func (m *Metrics) frameOut()     { atomic.AddInt64(&m.FramesOut, 1) }
func (m *Metrics) dropped()      { atomic.AddInt64(&m.Dropped, 1) }
func (m *Metrics) slowConsumer() { atomic.AddInt64(&m.SlowConsumers, 1) }
func (m *Metrics) helloRound()   { atomic.AddInt64(&m.HelloRounds, 1) }

// Snapshot returns a read-only copy suitable for JSON output.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"connections":    atomic.LoadInt64(&m.Connections),
		"accepted":       atomic.LoadInt64(&m.Accepted),
		"frames_in":      atomic.LoadInt64(&m.FramesIn),
		"frames_out":     atomic.LoadInt64(&m.FramesOut),
		"dropped":        atomic.LoadInt64(&m.Dropped),
		"slow_consumers": atomic.LoadInt64(&m.SlowConsumers),
		"hello_rounds":   atomic.LoadInt64(&m.HelloRounds),
	}
}
