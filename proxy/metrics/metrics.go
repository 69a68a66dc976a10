// Package metrics instruments a proxy.Conn with Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/busgen/proxy"
)

const namespace = "busgen"

// Outcome label values.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics holds the collectors shared by every instrumented handle.
type Metrics struct {
	// Operations counts handle operations by interface, op, member and outcome.
	OperationsTotal *prometheus.CounterVec
	// OperationDuration observes handle operation latency by interface and op.
	OperationDuration *prometheus.HistogramVec
	// HandlesOpen tracks handles opened and not yet closed.
	HandlesOpen prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "operations_total",
			Help:      "Total number of proxy operations by interface, operation, member and outcome",
		}, []string{"interface", "op", "member", "outcome"}),

		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "operation_duration_seconds",
			Help:      "Duration of proxy operations",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"interface", "op"}),

		HandlesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "handles_open",
			Help:      "Number of open object handles",
		}),
	}

	reg.MustRegister(m.OperationsTotal, m.OperationDuration, m.HandlesOpen)
	return m
}

// Conn wraps a proxy.Conn so every handle it opens is instrumented.
// Errors pass through unchanged.
type Conn struct {
	next    proxy.Conn
	metrics *Metrics
}

// Instrument returns conn with metrics recorded into m.
func Instrument(conn proxy.Conn, m *Metrics) *Conn {
	return &Conn{next: conn, metrics: m}
}

// Open implements proxy.Conn.
func (c *Conn) Open(destination, path, iface string) (proxy.Object, error) {
	start := time.Now()
	obj, err := c.next.Open(destination, path, iface)
	c.metrics.observe(iface, proxy.OpOpen, "", start, err)
	if err != nil {
		return nil, err
	}
	c.metrics.HandlesOpen.Inc()
	return &object{next: obj, iface: iface, metrics: c.metrics}, nil
}

func (m *Metrics) observe(iface, op, member string, start time.Time, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.OperationsTotal.WithLabelValues(iface, op, member, outcome).Inc()
	m.OperationDuration.WithLabelValues(iface, op).Observe(time.Since(start).Seconds())
}

type object struct {
	next    proxy.Object
	iface   string
	metrics *Metrics
}

func (o *object) Call(method string, args []any, reply ...any) error {
	start := time.Now()
	err := o.next.Call(method, args, reply...)
	o.metrics.observe(o.iface, proxy.OpCall, method, start, err)
	return err
}

func (o *object) Get(property string, value any) error {
	start := time.Now()
	err := o.next.Get(property, value)
	o.metrics.observe(o.iface, proxy.OpGet, property, start, err)
	return err
}

func (o *object) Set(property string, value any) error {
	start := time.Now()
	err := o.next.Set(property, value)
	o.metrics.observe(o.iface, proxy.OpSet, property, start, err)
	return err
}

func (o *object) Introspect() (string, error) {
	start := time.Now()
	xml, err := o.next.Introspect()
	o.metrics.observe(o.iface, proxy.OpIntrospect, "", start, err)
	return xml, err
}

func (o *object) Close() error {
	start := time.Now()
	err := o.next.Close()
	o.metrics.observe(o.iface, proxy.OpClose, "", start, err)
	if err == nil {
		o.metrics.HandlesOpen.Dec()
	}
	return err
}
