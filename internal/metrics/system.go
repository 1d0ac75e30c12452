package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/mpmatmul/internal/sysmon"
)

// SampleFunc reads system-wide resource usage.
type SampleFunc func(ctx context.Context) (sysmon.Stats, error)

// SystemCollector reports host CPU and memory usage on every scrape.
type SystemCollector struct {
	sample  SampleFunc
	timeout time.Duration
	cpu     *prometheus.Desc
	mem     *prometheus.Desc
}

// NewSystemCollector returns a collector backed by sysmon.Sample. A nil
// sample function selects sysmon.Sample.
func NewSystemCollector(sample SampleFunc) *SystemCollector {
	if sample == nil {
		sample = sysmon.Sample
	}
	return &SystemCollector{
		sample:  sample,
		timeout: 2 * time.Second,
		cpu: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "system", "cpu_percent"),
			"System-wide CPU utilisation since the previous scrape.", nil, nil),
		mem: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "system", "memory_percent"),
			"System-wide memory utilisation.", nil, nil),
	}
}

func (c *SystemCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpu
	ch <- c.mem
}

// Collect samples the host. A failed reading surfaces as an invalid metric
// so that the scrape reports the error.
func (c *SystemCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	s, err := c.sample(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.cpu, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.cpu, prometheus.GaugeValue, s.CPUPercent)
	ch <- prometheus.MustNewConstMetric(c.mem, prometheus.GaugeValue, s.MemPercent)
}
