package datasets

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Noofbiz/movingDigits/synth"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Config holds the parameters of a MovingDigits dataset.
type Config struct {
	// Length is the number of samples reported by Len.
	Length int

	// NumObjects lists the possible number of sprites per sample; each sample
	// picks one uniformly.
	NumObjects []int

	// NumInput and NumOutput frames per sample.
	NumInput  int
	NumOutput int

	// Canvas/sprite sizes in pixels and the per-frame step in unit-square
	// lengths. SpriteSize 0 uses the pool's sprite size.
	CanvasSize int
	SpriteSize int
	StepLength float64

	// BlockFactor for the spatial-to-channel reshape (1 = none).
	BlockFactor int

	// Threshold, if set, binarizes samples.
	Threshold *float32

	// Seed for the dataset RNG. If zero, a time-based seed is used.
	Seed int64

	// Deterministic derives each sample's RNG from (Seed, index), so the same
	// index always yields the same sample.
	Deterministic bool

	// BatchSize used by Yield.
	BatchSize int

	// Workers generating a batch in parallel (0 = NumCPU).
	Workers int
}

// DefaultConfig returns the classic moving digits setup: 10k samples of two
// 28x28 digits on a 64x64 canvas, 5 input and 5 output frames.
func DefaultConfig() Config {
	return Config{
		Length:      10000,
		NumObjects:  []int{2},
		NumInput:    5,
		NumOutput:   5,
		CanvasSize:  64,
		SpriteSize:  28,
		StepLength:  0.1,
		BlockFactor: 1,
		BatchSize:   32,
	}
}

// MovingDigits generates bouncing-sprite sequences lazily, one per Example
// call. Nothing is cached: unless Config.Deterministic is set, asking twice
// for the same index gives two different samples.
type MovingDigits struct {
	Config Config

	sim  *synth.Simulator
	pool synth.Pool

	mu  sync.Mutex // Protects rng.
	rng *rand.Rand

	epoch *epoch
}

// NewMovingDigits validates cfg against pool and creates the dataset.
func NewMovingDigits(pool synth.Pool, cfg Config) (*MovingDigits, error) {
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	if cfg.SpriteSize == 0 {
		cfg.SpriteSize = pool.SpriteSize()
	}
	if cfg.SpriteSize != pool.SpriteSize() {
		return nil, errors.Wrapf(synth.ErrInvalidConfig, "sprite size %d does not match pool sprite size %d",
			cfg.SpriteSize, pool.SpriteSize())
	}
	sim, err := synth.NewSimulator(cfg.CanvasSize, cfg.SpriteSize, cfg.StepLength)
	if err != nil {
		return nil, err
	}
	if cfg.Length <= 0 {
		return nil, errors.Wrapf(synth.ErrInvalidConfig, "length must be > 0, got %d", cfg.Length)
	}
	if len(cfg.NumObjects) == 0 {
		return nil, errors.Wrap(synth.ErrInvalidConfig, "no number of objects given")
	}
	for _, n := range cfg.NumObjects {
		if n < 0 {
			return nil, errors.Wrapf(synth.ErrInvalidConfig, "number of objects must be >= 0, got %d", n)
		}
	}
	if cfg.NumInput+cfg.NumOutput <= 0 {
		return nil, errors.Wrapf(synth.ErrInvalidConfig, "sequence needs at least one frame, got in=%d out=%d",
			cfg.NumInput, cfg.NumOutput)
	}
	if cfg.BlockFactor == 0 {
		cfg.BlockFactor = 1
	}
	if err := cfg.splitOptions().validate(cfg.NumInput+cfg.NumOutput, cfg.CanvasSize); err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	klog.V(1).Infof("MovingDigits: %d samples, objects=%v, %d+%d frames, canvas=%d sprite=%d step=%g, pool=%d sprites",
		cfg.Length, cfg.NumObjects, cfg.NumInput, cfg.NumOutput, cfg.CanvasSize, cfg.SpriteSize, cfg.StepLength, len(pool))
	return &MovingDigits{
		Config: cfg,
		sim:    sim,
		pool:   pool,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		epoch:  newEpoch(cfg.Length, cfg.BatchSize),
	}, nil
}

func (c Config) splitOptions() SplitOptions {
	return SplitOptions{
		NumInput:    c.NumInput,
		NumOutput:   c.NumOutput,
		BlockFactor: c.BlockFactor,
		Threshold:   c.Threshold,
	}
}

// SequenceLength is the number of frames generated per sample.
func (d *MovingDigits) SequenceLength() int {
	return d.Config.NumInput + d.Config.NumOutput
}

// Simulator returns the simulator used to draw trajectories.
func (d *MovingDigits) Simulator() *synth.Simulator { return d.sim }

// Len returns the number of samples of the dataset.
func (d *MovingDigits) Len() int { return d.Config.Length }

// Name returns the name of the dataset
func (d *MovingDigits) Name() string { return "MovingDigits" }

// sampleSeed mixes the dataset seed and a sample index into a seed.
func sampleSeed(seed int64, idx int) int64 {
	return seed ^ int64(uint64(idx+1)*0x9E3779B97F4A7C15)
}

// seedsFor returns one seed per index. In deterministic mode seeds depend only
// on the index; otherwise they are drawn serially from the dataset RNG.
func (d *MovingDigits) seedsFor(indices []int) []int64 {
	seeds := make([]int64, len(indices))
	if d.Config.Deterministic {
		for i, idx := range indices {
			seeds[i] = sampleSeed(d.Config.Seed, idx)
		}
		return seeds
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range seeds {
		seeds[i] = d.rng.Int63()
	}
	return seeds
}

func (d *MovingDigits) checkIndex(idx int) error {
	if idx < 0 || idx >= d.Config.Length {
		return fmt.Errorf("index %d out of range [0, %d)", idx, d.Config.Length)
	}
	return nil
}

// generate draws the number of objects and renders one raw sequence.
func (d *MovingDigits) generate(rng *rand.Rand) ([]synth.Frame, []synth.Trajectory, error) {
	numObjects := d.Config.NumObjects[rng.Intn(len(d.Config.NumObjects))]
	return d.sim.Sequence(rng, numObjects, d.SequenceLength(), d.pool)
}

// Sequence returns the raw frames ([0,255] scale) and trajectories of sample
// idx, before splitting and normalization.
func (d *MovingDigits) Sequence(idx int) ([]synth.Frame, []synth.Trajectory, error) {
	if err := d.checkIndex(idx); err != nil {
		return nil, nil, err
	}
	seed := d.seedsFor([]int{idx})[0]
	return d.generate(rand.New(rand.NewSource(seed)))
}

// Example generates sample idx.
func (d *MovingDigits) Example(idx int) (*Sample, error) {
	s, _, err := d.ExampleWithTrajectories(idx)
	return s, err
}

// ExampleWithTrajectories generates sample idx and also returns the sprite
// trajectories it was rendered from.
func (d *MovingDigits) ExampleWithTrajectories(idx int) (*Sample, []synth.Trajectory, error) {
	frames, trajs, err := d.Sequence(idx)
	if err != nil {
		return nil, nil, err
	}
	s, err := SplitAndNormalize(frames, d.Config.splitOptions())
	if err != nil {
		return nil, nil, err
	}
	return s, trajs, nil
}

// Batch generates the samples for indices using a pool of workers. Seeds are
// drawn before the workers start, so the result doesn't depend on
// scheduling.
func (d *MovingDigits) Batch(indices []int) ([]*Sample, error) {
	for _, idx := range indices {
		if err := d.checkIndex(idx); err != nil {
			return nil, err
		}
	}
	seeds := d.seedsFor(indices)
	samples := make([]*Sample, len(indices))
	if len(indices) == 0 {
		return samples, nil
	}

	workerCount := d.Config.Workers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	workerCount = min(workerCount, len(indices))

	jobs := make(chan int, len(indices))
	errs := make([]error, len(indices))
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for range workerCount {
		go func() {
			defer wg.Done()
			for i := range jobs {
				frames, _, err := d.generate(rand.New(rand.NewSource(seeds[i])))
				if err == nil {
					samples[i], err = SplitAndNormalize(frames, d.Config.splitOptions())
				}
				errs[i] = err
			}
		}()
	}
	for i := range indices {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.WithMessagef(err, "sample %d", indices[i])
		}
	}
	return samples, nil
}

// Precompute renders n raw sequences into a Sequences buffer, freezing the
// dataset so it can be saved or replayed through a SequenceDataset. If set,
// progress is called after each sequence.
func (d *MovingDigits) Precompute(n int, progress func()) (*Sequences, error) {
	if n <= 0 {
		return nil, errors.Wrapf(synth.ErrInvalidConfig, "number of sequences must be > 0, got %d", n)
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i % d.Config.Length
	}
	seeds := d.seedsFor(indices)
	seqs := NewSequences(n, d.SequenceLength(), d.Config.CanvasSize)
	for i, seed := range seeds {
		frames, _, err := d.generate(rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		seqs.SetFrames(i, frames)
		if progress != nil {
			progress()
		}
	}
	return seqs, nil
}

// Shuffle shuffles the order in which Yield visits the samples.
func (d *MovingDigits) Shuffle(seed int64) {
	d.epoch.shuffle(seed)
}

// Reset restarts Yield from the first sample.
func (d *MovingDigits) Reset() {
	d.epoch.reset()
}

// Yield returns the next batch of data for the gomlx Dataset interface. Batch
// is determined by Config.BatchSize, and io.EOF marks the end of an epoch.
func (d *MovingDigits) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	return yieldBatch(d, d.epoch)
}
