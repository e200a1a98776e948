package metric

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// TableStats is a point-in-time copy of the table's shape.
type TableStats struct {
	Entries  int
	Buckets  int
	Exponent uint8
	Grows    uint64
}

// TableCollector exports the most recently published TableStats.
type TableCollector struct {
	latest atomic.Pointer[TableStats]

	entries  *prometheus.Desc
	buckets  *prometheus.Desc
	exponent *prometheus.Desc
	grows    *prometheus.Desc
}

// NewTableCollector creates a collector with zeroed stats.
func NewTableCollector(namespace string) *TableCollector {
	c := &TableCollector{
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "entries"),
			"Number of keys stored in the table.", nil, nil),
		buckets: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "buckets"),
			"Number of bucket slots in the table.", nil, nil),
		exponent: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "size_exponent"),
			"Base-2 logarithm of the bucket count.", nil, nil),
		grows: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "grows_total"),
			"Number of times the table doubled its bucket array.", nil, nil),
	}
	c.latest.Store(&TableStats{})
	return c
}

// Publish replaces the exported stats.
func (c *TableCollector) Publish(s TableStats) {
	c.latest.Store(&s)
}

// Latest returns the last published stats.
func (c *TableCollector) Latest() TableStats {
	return *c.latest.Load()
}

// Describe implements prometheus.Collector.
func (c *TableCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.buckets
	ch <- c.exponent
	ch <- c.grows
}

// Collect implements prometheus.Collector.
func (c *TableCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.latest.Load()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue, float64(s.Buckets))
	ch <- prometheus.MustNewConstMetric(c.exponent, prometheus.GaugeValue, float64(s.Exponent))
	ch <- prometheus.MustNewConstMetric(c.grows, prometheus.CounterValue, float64(s.Grows))
}
