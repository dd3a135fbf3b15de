package multilang

import (
	"encoding/json"
	"hash/fnv"
	"math"
	"math/rand/v2"
)

// PartitionFunc functions pick a destination for a tuple among several
// tasks of a component, for use with OperatorContext.EmitPartitioned.
//
// PartitionFunc functions return an integer that is modulo'd with the number
// of tasks to select one.
type PartitionFunc func(*Tuple) int

// PartitionRoundRobin sends tuples to the tasks in order of their id.
func PartitionRoundRobin() PartitionFunc {
	n := uint32(math.MaxUint32)
	return func(t *Tuple) int {
		n++
		return int(n)
	}
}

// PartitionRandom sends tuples to random tasks.
func PartitionRandom() PartitionFunc {
	return func(t *Tuple) int {
		return rand.IntN(math.MaxInt32)
	}
}

// PartitionHash sends tuples with equal values at the given indexes to the
// same task.
func PartitionHash(indexes ...int) PartitionFunc {
	fields := make([]any, len(indexes))

	return func(t *Tuple) int {
		for i, idx := range indexes {
			fields[i] = t.Value(idx)
		}
		b, _ := json.Marshal(fields)
		h := fnv.New32()
		h.Write(b)
		return int(h.Sum32() & math.MaxInt32)
	}
}
