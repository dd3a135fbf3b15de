package multilang

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joelanford/multilang/errors"
)

// OperatorContext is passed to a component's Setup to provide the topology
// configuration, logging and tuple emission.
type OperatorContext struct {
	name      string
	setup     *Setup
	log       InfoDebugLogger
	proto     *Protocol
	collector *OperatorCollector
}

// Name returns the component id from the topology context.
func (o *OperatorContext) Name() string {
	return o.name
}

// TaskID returns the id of the task this process runs.
func (o *OperatorContext) TaskID() int {
	return o.setup.Context.TaskID
}

// Conf returns the topology configuration sent during the handshake.
func (o *OperatorContext) Conf() map[string]any {
	return o.setup.Conf
}

// ConfString returns the string configuration value for key, or def.
func (o *OperatorContext) ConfString(key, def string) string {
	if s, ok := o.setup.Conf[key].(string); ok {
		return s
	}
	return def
}

// ConfInt returns the integer configuration value for key, or def. Numbers
// and numeric strings are accepted.
func (o *OperatorContext) ConfInt(key string, def int) int {
	switch v := o.setup.Conf[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Context returns the topology context sent during the handshake.
func (o *OperatorContext) Context() TopologyContext {
	return o.setup.Context
}

// Log returns the InfoDebugLogger instance associated with the operator.
// Info lines also reach the parent's log.
func (o *OperatorContext) Log() InfoDebugLogger {
	return o.log
}

// Emit sends a tuple to the parent and returns the tasks it was routed to.
func (o *OperatorContext) Emit(t *Tuple, opts ...EmitOption) ([]int, error) {
	return o.proto.Emit(t, opts...)
}

// EmitDirect sends a tuple to a single task.
func (o *OperatorContext) EmitDirect(task int, t *Tuple, opts ...EmitOption) ([]int, error) {
	return o.proto.EmitDirect(task, t, opts...)
}

// EmitPartitioned sends a tuple directly to one of the tasks of component,
// chosen by partition. The tasks are taken from the topology context.
func (o *OperatorContext) EmitPartitioned(component string, t *Tuple, partition PartitionFunc, opts ...EmitOption) ([]int, error) {
	tasks := o.setup.Context.ComponentTasks(component)
	if len(tasks) == 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("no tasks for component %q", component),
			"OperatorContext", "EmitPartitioned", "pick task")
	}
	i := partition(t) % len(tasks)
	if i < 0 {
		i += len(tasks)
	}
	return o.proto.EmitDirect(tasks[i], t, opts...)
}

// Ack acks a message id back to the parent. Spouts implementing Acker call
// it to keep the default behavior; bolt tuples are acked by the runtime.
func (o *OperatorContext) Ack(id string) error {
	return o.proto.Ack(id)
}

// Fail fails a message id back to the parent.
func (o *OperatorContext) Fail(id string) error {
	return o.proto.Fail(id)
}

// RegisterMetric adds a collector to the runtime metrics. Call it from Setup.
func (o *OperatorContext) RegisterMetric(c prometheus.Collector) {
	o.collector.Register(c)
}
