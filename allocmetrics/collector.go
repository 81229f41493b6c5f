// Package allocmetrics exposes the free/capacity counters of one or more
// arena allocators as Prometheus gauges. Like obslog, this lives strictly
// outside the arena package: the allocators never touch it, a caller wires
// a Collector up afterward and polls their public stats accessors on
// Collect.
package allocmetrics

import "github.com/prometheus/client_golang/prometheus"

// source is one allocator's stats, sampled fresh on every Collect call
// rather than cached, so scraping never hands out stale numbers.
type source struct {
	name     string
	free     func() float64
	capacity func() float64 // nil if the allocator has no fixed capacity to report
}

// Collector implements prometheus.Collector over a registered set of
// allocator stats sources. It is safe to register sources at any time
// before the first Collect; registration after a Collector has been handed
// to a prometheus.Registry is not safe for concurrent use.
type Collector struct {
	freeDesc     *prometheus.Desc
	capacityDesc *prometheus.Desc
	sources      []source
}

// NewCollector builds an empty Collector. namespace/subsystem follow the
// usual prometheus client convention for building the exported metric
// names, e.g. NewCollector("inosheap", "pool").
func NewCollector(namespace, subsystem string) *Collector {
	return &Collector{
		freeDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "free_blocks"),
			"Number of blocks currently available for allocation.",
			[]string{"pool"}, nil,
		),
		capacityDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "capacity_blocks"),
			"Total number of blocks the pool was laid out with.",
			[]string{"pool"}, nil,
		),
	}
}

// RegisterCounts adds a named source reporting only a free count, for
// allocators without a fixed capacity (Slab's page count grows and shrinks
// with the page supplier rather than being bounded up front).
func (c *Collector) RegisterCounts(name string, free func() uint32) {
	c.sources = append(c.sources, source{
		name: name,
		free: func() float64 { return float64(free()) },
	})
}

// Register adds a named source reporting both free and total capacity, the
// shape BitmapPool, BlockListPool, and SegregatedFixedHeap's size classes
// all expose. A nil capacity is treated the same as calling RegisterCounts.
func (c *Collector) Register(name string, free, capacity func() uint32) {
	s := source{
		name: name,
		free: func() float64 { return float64(free()) },
	}
	if capacity != nil {
		s.capacity = func() float64 { return float64(capacity()) }
	}
	c.sources = append(c.sources, s)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.freeDesc
	ch <- c.capacityDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.sources {
		ch <- prometheus.MustNewConstMetric(c.freeDesc, prometheus.GaugeValue, s.free(), s.name)
		if s.capacity != nil {
			ch <- prometheus.MustNewConstMetric(c.capacityDesc, prometheus.GaugeValue, s.capacity(), s.name)
		}
	}
}
