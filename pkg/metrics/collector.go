package metrics

import "time"

// QueueDepthSource reports the number of jobs currently pending in a
// transport. Implemented by the transports in pkg/transport.
type QueueDepthSource interface {
	PendingCount() int
}

// Collector periodically samples queue depth from a transport and
// publishes it to the QueueDepth gauge, mirroring the spec's "queue depth
// set to transport's pending count periodically" requirement.
type Collector struct {
	source QueueDepthSource
	stopCh chan struct{}
}

// NewCollector returns a Collector sampling source on a fixed interval.
func NewCollector(source QueueDepthSource) *Collector {
	return &Collector{
		source: source,
		stopCh: make(chan struct{}),
	}
}

// Start begins sampling in a background goroutine.
func (c *Collector) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		c.sample()
		for {
			select {
			case <-ticker.C:
				c.sample()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts sampling.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) sample() {
	QueueDepth.Set(float64(c.source.PendingCount()))
}
