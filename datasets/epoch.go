package datasets

import (
	"io"
	"math/rand"
	"sync"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// epoch tracks the order and position in which Yield walks a dataset.
type epoch struct {
	mu        sync.Mutex
	order     []int
	position  int
	batchSize int
}

func newEpoch(n, batchSize int) *epoch {
	e := &epoch{order: make([]int, n), batchSize: batchSize}
	for i := range e.order {
		e.order[i] = i
	}
	return e
}

// shuffle permutes the visiting order and rewinds.
func (e *epoch) shuffle(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(e.order), func(i, j int) {
		e.order[i], e.order[j] = e.order[j], e.order[i]
	})
	e.position = 0
}

func (e *epoch) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = 0
}

// next returns the indices of the next batch, or io.EOF once the epoch is
// over. The last batch may be smaller than batchSize.
func (e *epoch) next() ([]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.position >= len(e.order) {
		return nil, io.EOF
	}
	end := min(e.position+e.batchSize, len(e.order))
	indices := make([]int, end-e.position)
	copy(indices, e.order[e.position:end])
	e.position = end
	return indices, nil
}

// yieldBatch builds the tensors for the next batch of ds.
func yieldBatch(ds Dataset, e *epoch) (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	indices, err := e.next()
	if err != nil {
		return nil, nil, nil, err
	}
	samples, err := ds.Batch(indices)
	if err != nil {
		return nil, nil, nil, err
	}
	flat, err := MakeBatchFlat(samples)
	if err != nil {
		return nil, nil, nil, errors.WithMessagef(err, "%s: failed to build batch", ds.Name())
	}
	in, la, err := flat.ToGomlxTensors()
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, []*tensors.Tensor{in}, []*tensors.Tensor{la}, nil
}
