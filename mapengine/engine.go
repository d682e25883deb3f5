// Package mapengine implements the streaming and parallel record-mapping
// harness every MapProcessor delegates to. Serial mode streams records
// through process_record one at a time, in order. Parallel mode fans
// chunks of records out to a worker pool, each worker owning its own
// processor instance (reconstructed from the same params, never shared
// across goroutines), and commits results back to the output manifest in
// input order.
package mapengine

import (
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	minidperrors "minidp/errors"
	"minidp/internal/safego"
	"minidp/manifest"
	"minidp/processor"
	"minidp/record"
)

const defaultChunkSize = 10000

// Run streams mp.Input() through mp.Mapper (or a pool of independent
// copies of it, when MaxWorkers >= 2) and writes the results to
// mp.Output(), in input order.
func Run(rc *processor.RunContext, mp *processor.MapProcessor) (processor.RunStats, error) {
	start := time.Now()

	reader, err := manifest.OpenReader(mp.Input())
	if err != nil {
		return processor.RunStats{}, err
	}
	defer reader.Close() //nolint:errcheck

	writer, err := manifest.CreateWriter(mp.Output())
	if err != nil {
		return processor.RunStats{}, err
	}
	defer writer.Close() //nolint:errcheck

	maxWorkers := mp.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	chunkSize := mp.InMemoryChunk
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}

	var stats processor.RunStats
	if maxWorkers < 2 {
		err = runSerial(rc, mp, reader, writer, &stats)
	} else {
		err = runParallel(rc, mp, reader, writer, maxWorkers, chunkSize, &stats)
	}

	if cerr := writer.Close(); cerr != nil && err == nil {
		err = cerr
	}
	stats.Time = time.Since(start)
	return stats, err
}

// apply folds one input record's emitted entries into stats and the
// output manifest, implementing the counting rule that keeps
// Out == In - Dropped + Expanded true for every record: Written is the
// count of non-dropped entries (each gets appended to output); Dropped
// counts entries explicitly marked dropped, or 1 when the processor
// emitted no entries at all.
func apply(writer *manifest.Writer, entries []record.DataEntry, mp *processor.MapProcessor, stats *processor.RunStats) error {
	stats.In++

	if len(entries) == 0 {
		stats.Dropped++
		return nil
	}

	written := 0
	dropped := 0
	for _, e := range entries {
		mp.RecordMetrics(e.Metrics)
		if e.Dropped {
			dropped++
			continue
		}
		if err := writer.Write(e.Data); err != nil {
			return err
		}
		written++
	}

	stats.Out += written
	stats.Dropped += dropped
	stats.Expanded += written - 1 + dropped
	return nil
}

func runSerial(rc *processor.RunContext, mp *processor.MapProcessor, reader *manifest.Reader, writer *manifest.Writer, stats *processor.RunStats) error {
	idx := 0
	for {
		select {
		case <-rc.Ctx.Done():
			return &minidperrors.CancelledError{Reason: rc.Ctx.Err().Error()}
		default:
		}

		rec, ok, err := reader.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		entries, err := mp.Mapper.ProcessRecord(rec)
		if err != nil {
			return &minidperrors.ProcessorExecutionError{RecordIndex: idx, Err: err}
		}
		if err := apply(writer, entries, mp, stats); err != nil {
			return err
		}
		idx++
	}
}

type chunkJob struct {
	index   int
	startAt int
	records []record.Record
}

type chunkResult struct {
	index    int
	startAt  int
	perInput [][]record.DataEntry
	err      error
	errAt    int
}

// runParallel dispatches chunks of up to chunkSize records to a pool of
// maxWorkers goroutines, each owning its own processor instance. At most
// 2*maxWorkers chunks are checked out (read, in flight, or pending
// commit) at any time, bounding memory to 2*maxWorkers*chunkSize records.
// A worker-level error cancels the remaining workers cooperatively: they
// finish the record in hand and then observe the stop flag.
func runParallel(rc *processor.RunContext, mp *processor.MapProcessor, reader *manifest.Reader, writer *manifest.Writer,
	maxWorkers, chunkSize int, stats *processor.RunStats) error {
	sem := semaphore.NewWeighted(int64(2 * maxWorkers))
	jobs := make(chan *chunkJob)
	results := make(chan *chunkResult, 2*maxWorkers)

	var stopped atomicBool

	var workerWG sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		safego.SafeGoWithWaitGroup("mapengine-worker", &workerWG, func() {
			for job := range jobs {
				results <- processChunk(mp, job, &stopped)
			}
		})
	}

	var commitErr error
	commitDone := make(chan struct{})
	safego.SafeGo("mapengine-committer", func() {
		defer close(commitDone)
		pending := map[int]*chunkResult{}
		next := 0
		for res := range results {
			pending[res.index] = res
			for {
				r, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if r.err != nil && commitErr == nil {
					commitErr = &minidperrors.ProcessorExecutionError{RecordIndex: r.startAt + r.errAt, Err: r.err}
					stopped.set()
				}
				for _, entries := range r.perInput {
					if err := apply(writer, entries, mp, stats); err != nil && commitErr == nil {
						commitErr = err
						stopped.set()
					}
				}
				sem.Release(1)
			}
		}
	})

	ctx := rc.Ctx
	idx := 0
	jobIndex := 0
	dispatchErr := error(nil)
readLoop:
	for {
		if stopped.get() {
			break
		}
		select {
		case <-ctx.Done():
			dispatchErr = &minidperrors.CancelledError{Reason: ctx.Err().Error()}
			break readLoop
		default:
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			dispatchErr = &minidperrors.CancelledError{Reason: err.Error()}
			break readLoop
		}

		chunk := make([]record.Record, 0, chunkSize)
		startAt := idx
		for len(chunk) < chunkSize {
			rec, ok, err := reader.Next()
			if err != nil {
				dispatchErr = err
				break readLoop
			}
			if !ok {
				break
			}
			chunk = append(chunk, rec)
			idx++
		}
		if len(chunk) == 0 {
			sem.Release(1)
			break
		}

		jobs <- &chunkJob{index: jobIndex, startAt: startAt, records: chunk}
		jobIndex++
	}

	close(jobs)
	workerWG.Wait()
	close(results)
	<-commitDone

	if dispatchErr != nil {
		return dispatchErr
	}
	return commitErr
}

func processChunk(mp *processor.MapProcessor, job *chunkJob, stopped *atomicBool) *chunkResult {
	mapper, err := mp.NewInstance()
	if err != nil {
		return &chunkResult{index: job.index, startAt: job.startAt, err: err, errAt: 0}
	}

	perInput := make([][]record.DataEntry, 0, len(job.records))
	for i, rec := range job.records {
		if stopped.get() {
			break
		}
		entries, err := mapper.ProcessRecord(rec)
		if err != nil {
			return &chunkResult{index: job.index, startAt: job.startAt, perInput: perInput, err: err, errAt: i}
		}
		perInput = append(perInput, entries)
	}
	return &chunkResult{index: job.index, startAt: job.startAt, perInput: perInput}
}

type atomicBool struct {
	mu sync.Mutex
	v  bool
}

func (a *atomicBool) set() {
	a.mu.Lock()
	a.v = true
	a.mu.Unlock()
}

func (a *atomicBool) get() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.v
}
