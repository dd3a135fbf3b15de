package multilang

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joelanford/multilang/config"
	"github.com/joelanford/multilang/errors"
)

// Option configures a runtime started with RunSpout or RunBolt.
type Option func(*options)

type options struct {
	in              io.Reader
	out             io.Writer
	logger          *slog.Logger
	pid             PIDRecorder
	debug           bool
	manualAnchoring bool
	registerer      prometheus.Registerer
	metricsFile     string
}

// WithIO replaces stdin and stdout as the transport to the parent.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		o.in = in
		o.out = out
	}
}

// WithLogger sets the local logger. It must not write to the protocol
// output. The default logs text to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPIDRecorder replaces the default pid reporting, which uses the process
// id and creates an empty file named after it in the setup's pid directory.
func WithPIDRecorder(rec PIDRecorder) Option {
	return func(o *options) {
		o.pid = rec
	}
}

// WithDebug turns on debug logging for the component logger.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithManualAnchoring makes a bolt runtime leave anchoring to the component:
// emits are anchored only to the tuples passed with WithAnchors.
func WithManualAnchoring() Option {
	return func(o *options) {
		o.manualAnchoring = true
	}
}

// WithRegisterer registers the runtime metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithMetricsFile writes the runtime metrics in the Prometheus text format
// to path when the runtime stops.
func WithMetricsFile(path string) Option {
	return func(o *options) {
		o.metricsFile = path
	}
}

// WithConfig applies a process configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.debug = o.debug || cfg.Debug
		o.manualAnchoring = o.manualAnchoring || cfg.ManualAnchoring
		if cfg.MetricsFile != "" {
			o.metricsFile = cfg.MetricsFile
		}
		if o.logger == nil {
			o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		}
	}
}

type runtime struct {
	opts      options
	proto     *Protocol
	collector *OperatorCollector
	metrics   *Metrics
	logger    *slog.Logger
}

func newRuntime(mode Mode, opts []Option) *runtime {
	o := options{
		in:  os.Stdin,
		out: os.Stdout,
		pid: pidFile{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		level := slog.LevelInfo
		if o.debug {
			level = slog.LevelDebug
		}
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	collector := NewOperatorCollector()
	metrics := NewMetrics(collector)

	logger := o.logger.With("mode", mode.String())
	proto := NewProtocol(o.in, o.out, mode)
	proto.setMetrics(metrics)
	proto.codec.onBadFrame = func(body string) {
		logger.Warn("malformed frame", "body", body)
	}

	return &runtime{
		opts:      o,
		proto:     proto,
		collector: collector,
		metrics:   metrics,
		logger:    logger,
	}
}

// start runs the handshake and the component's setup.
func (r *runtime) start(ctx context.Context, setup func(context.Context, *OperatorContext) error) (*OperatorContext, error) {
	s, err := r.proto.Handshake(r.opts.pid)
	if err != nil {
		return nil, err
	}

	name := s.Context.ComponentID
	if name != "" {
		r.logger = r.logger.With("component", name, "task", s.Context.TaskID)
	}
	log := NewLogger(r.logger, r.proto.Log)
	log.SetDebug(r.opts.debug)

	oc := &OperatorContext{
		name:      name,
		setup:     s,
		log:       log,
		proto:     r.proto,
		collector: r.collector,
	}
	r.logger.Debug("handshake complete", "pid_dir", s.PIDDir)

	if err := call(func() error { return setup(ctx, oc) }); err != nil {
		r.report(err)
		return nil, err
	}

	// registered after setup so metrics added there are described
	if r.opts.registerer != nil {
		if err := r.opts.registerer.Register(r.collector); err != nil {
			r.logger.Warn("register metrics", "error", err)
		}
	}
	return oc, nil
}

func (r *runtime) teardown(component any) {
	if c, ok := component.(io.Closer); ok {
		if err := c.Close(); err != nil {
			r.logger.Warn("close component", "error", err)
		}
	}
}

// finish writes the metrics file and turns the end of the input stream into
// a clean stop.
func (r *runtime) finish(err error) error {
	if r.opts.metricsFile != "" {
		reg := prometheus.NewRegistry()
		if regErr := reg.Register(r.collector); regErr == nil {
			if writeErr := prometheus.WriteToTextfile(r.opts.metricsFile, reg); writeErr != nil {
				r.logger.Warn("write metrics file", "path", r.opts.metricsFile, "error", writeErr)
			}
		}
	}

	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, io.EOF), stderrors.Is(err, context.Canceled):
		r.logger.Debug("runtime stopped", "reason", err)
		return nil
	default:
		r.logger.Error("runtime stopped", "error", err, "class", errors.Classify(err).String())
		return err
	}
}

// report logs err locally and to the parent.
func (r *runtime) report(err error) {
	r.logger.Error("component error", "error", err)
	if logErr := r.proto.Log(err.Error()); logErr != nil {
		r.logger.Warn("forward error to parent", "error", logErr)
	}
}

// call runs a component callback, turning a panic into a fatal error so the
// runtime can still send its completion signal.
func call(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrCallbackPanic, rec), "Runtime", "call", "run callback")
		}
	}()
	return fn()
}

func commandLabel(command string) string {
	switch command {
	case CommandNext, CommandAck, CommandFail:
		return command
	default:
		return "other"
	}
}
