package multilang

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "multilang"

// OperatorCollector gathers the protocol metrics of one runtime together with
// any metrics the component registers through its OperatorContext.
type OperatorCollector struct {
	metrics []prometheus.Collector
	mutex   sync.Mutex
}

// NewOperatorCollector returns an empty collector.
func NewOperatorCollector() *OperatorCollector {
	return &OperatorCollector{
		metrics: make([]prometheus.Collector, 0),
	}
}

func (oc *OperatorCollector) Describe(ch chan<- *prometheus.Desc) {
	oc.mutex.Lock()
	defer oc.mutex.Unlock()
	for _, m := range oc.metrics {
		m.Describe(ch)
	}
}

func (oc *OperatorCollector) Collect(ch chan<- prometheus.Metric) {
	oc.mutex.Lock()
	defer oc.mutex.Unlock()
	for _, m := range oc.metrics {
		m.Collect(ch)
	}
}

// Register adds c to the collector.
func (oc *OperatorCollector) Register(c prometheus.Collector) {
	oc.mutex.Lock()
	defer oc.mutex.Unlock()
	oc.metrics = append(oc.metrics, c)
}

// Metrics counts the protocol traffic of one runtime. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	framesRead    prometheus.Counter
	framesWritten prometheus.Counter
	malformed     prometheus.Counter
	commands      *prometheus.CounterVec
	emits         *prometheus.CounterVec
	acks          prometheus.Counter
	fails         prometheus.Counter
	syncs         prometheus.Counter
	pending       *prometheus.GaugeVec
}

// NewMetrics creates the protocol metrics and registers them with oc.
func NewMetrics(oc *OperatorCollector) *Metrics {
	m := &Metrics{
		framesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_read_total",
			Help:      "Frames read from the parent",
		}),
		framesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_written_total",
			Help:      "Frames written to the parent",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "malformed_frames_total",
			Help:      "Frames whose body was not valid JSON",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_total",
			Help:      "Commands dispatched by the runtime",
		}, []string{"command"}),
		emits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "emits_total",
			Help:      "Tuples emitted by the component",
		}, []string{"stream"}),
		acks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "acks_total",
			Help:      "Ack messages sent to the parent",
		}),
		fails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fails_total",
			Help:      "Fail messages sent to the parent",
		}),
		syncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "syncs_total",
			Help:      "Sync messages sent to the parent",
		}),
		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pending_frames",
			Help:      "Frames buffered while waiting for a frame of the other shape",
		}, []string{"queue"}),
	}
	if oc != nil {
		oc.Register(m.framesRead)
		oc.Register(m.framesWritten)
		oc.Register(m.malformed)
		oc.Register(m.commands)
		oc.Register(m.emits)
		oc.Register(m.acks)
		oc.Register(m.fails)
		oc.Register(m.syncs)
		oc.Register(m.pending)
	}
	return m
}

func (m *Metrics) frameRead() {
	if m != nil {
		m.framesRead.Inc()
	}
}

func (m *Metrics) frameWritten() {
	if m != nil {
		m.framesWritten.Inc()
	}
}

func (m *Metrics) malformedFrame() {
	if m != nil {
		m.malformed.Inc()
	}
}

func (m *Metrics) command(name string) {
	if m != nil {
		m.commands.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) emit(stream string) {
	if m != nil {
		if stream == "" {
			stream = "default"
		}
		m.emits.WithLabelValues(stream).Inc()
	}
}

func (m *Metrics) ack() {
	if m != nil {
		m.acks.Inc()
	}
}

func (m *Metrics) fail() {
	if m != nil {
		m.fails.Inc()
	}
}

func (m *Metrics) sync() {
	if m != nil {
		m.syncs.Inc()
	}
}

func (m *Metrics) pendingDepth(queue string, n int) {
	if m != nil {
		m.pending.WithLabelValues(queue).Set(float64(n))
	}
}
