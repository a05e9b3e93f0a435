package game

import (
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/neural"
	"github.com/pthm-cable/blobs/systems"
)

// blobSnapshot captures read-only state for parallel evaluation.
type blobSnapshot struct {
	Entity ecs.Entity
	Pos    components.Position
	Blob   components.Blob
	Brain  *neural.Controller
}

// workChunk represents a range of snapshots for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds resources for parallel controller evaluation.
type parallelState struct {
	snapshots  []blobSnapshot
	outputs    []neural.Output
	numWorkers int
	batchSize  int
	threshold  int // below this many blobs, evaluate inline

	// Worker pool
	workChan chan workChunk // sends work to workers
	stopChan chan struct{}  // signals workers to exit
	pending  sync.WaitGroup // chunks of the current dispatch
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newParallelState(numWorkers, batchSize, threshold int) *parallelState {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &parallelState{
		numWorkers: numWorkers,
		batchSize:  batchSize,
		threshold:  threshold,
		snapshots:  make([]blobSnapshot, 0, 256),
		outputs:    make([]neural.Output, 0, 256),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(chunk.start, chunk.end)
			p.pending.Done()
		}
	}
}

// updateBehavior evaluates every blob's controller against the chem index and
// applies the resulting motion and metabolism.
func (g *Game) updateBehavior() {
	p := g.parallel

	// Phase A: Build snapshots (single-threaded)
	p.snapshots = p.snapshots[:0]
	query := g.blobFilter.Query()
	for query.Next() {
		pos, blob := query.Get()
		brain, ok := g.brains[blob.ID]
		if !ok {
			continue
		}
		p.snapshots = append(p.snapshots, blobSnapshot{
			Entity: query.Entity(),
			Pos:    *pos,
			Blob:   *blob,
			Brain:  brain,
		})
	}

	n := len(p.snapshots)
	if n == 0 {
		return
	}
	if cap(p.outputs) < n {
		p.outputs = make([]neural.Output, n)
	}
	p.outputs = p.outputs[:n]

	// Phase B: Compute. The chem index is read-only from here until Phase C.
	if n < p.threshold {
		g.computeChunk(0, n)
	} else {
		g.computeParallel(n)
	}

	// Phase C: Apply outputs (single-threaded, preserves determinism)
	g.applyOutputs()
}

// computeParallel dispatches batches to the worker pool and waits for all of them.
func (g *Game) computeParallel(n int) {
	p := g.parallel
	if !p.running {
		p.startWorkers(g)
	}

	numChunks := (n + p.batchSize - 1) / p.batchSize
	p.pending.Add(numChunks)
	for start := 0; start < n; start += p.batchSize {
		end := min(start+p.batchSize, n)
		p.workChan <- workChunk{start: start, end: end}
	}
	p.pending.Wait()
}

// computeChunk senses and evaluates a range of snapshots. Each snapshot owns
// its controller, so chunks never share mutable state.
func (g *Game) computeChunk(i0, i1 int) {
	p := g.parallel
	for i := i0; i < i1; i++ {
		snap := &p.snapshots[i]
		systems.ComputeSensors(snap.Brain, snap.Pos, &snap.Blob, g.chemIndex)
		p.outputs[i] = snap.Brain.Eval()
	}
}

// applyOutputs writes evaluation results back to ECS components.
func (g *Game) applyOutputs() {
	p := g.parallel
	for i := range p.snapshots {
		e := p.snapshots[i].Entity
		acc := g.accMap.Get(e)
		blob := g.blobMap.Get(e)
		if acc == nil || blob == nil {
			continue
		}
		systems.ApplyOutput(acc, blob, p.outputs[i])
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
