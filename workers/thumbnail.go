package workers

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"

	"github.com/camden-git/photodesk/media"
)

// ErrStopped is reported for jobs that could not run because the generator stopped.
var ErrStopped = errors.New("thumbnail generator stopped")

// ThumbnailFunc renders a thumbnail for a media file and returns its stored path.
type ThumbnailFunc func(ctx context.Context, sourcePath string, kind media.Kind) (string, error)

type ThumbnailJob struct {
	SourcePath string
	Kind       media.Kind

	// Done, when set, receives the result on the worker goroutine.
	Done func(ThumbnailResult)
}

type ThumbnailResult struct {
	SourcePath    string
	ThumbnailPath string
	Err           error
}

type ThumbnailGenerator struct {
	JobQueue chan ThumbnailJob
	generate ThumbnailFunc
	ctx      context.Context
	cancel   context.CancelFunc
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex
	stopOnce sync.Once
}

// NewThumbnailGenerator starts numWorkers goroutines draining a queue of queueSize jobs.
func NewThumbnailGenerator(generate ThumbnailFunc, queueSize, numWorkers int) *ThumbnailGenerator {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	gen := &ThumbnailGenerator{
		JobQueue: make(chan ThumbnailJob, queueSize),
		generate: generate,
		ctx:      ctx,
		cancel:   cancel,
		StopChan: make(chan struct{}),
		Pending:  make(map[string]bool),
	}

	gen.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go gen.worker(i)
	}
	log.Printf("started %d thumbnail worker(s) with queue size %d", numWorkers, queueSize)

	return gen
}

// NewProcessorGenerator builds a generator backed by a media.Processor.
func NewProcessorGenerator(p *media.Processor, maxSize, queueSize, numWorkers int) *ThumbnailGenerator {
	return NewThumbnailGenerator(func(ctx context.Context, sourcePath string, kind media.Kind) (string, error) {
		return p.ThumbnailFromFile(ctx, sourcePath, kind, maxSize)
	}, queueSize, numWorkers)
}

func (tg *ThumbnailGenerator) worker(id int) {
	defer tg.Wg.Done()
	for {
		select {
		case job := <-tg.JobQueue:
			res := tg.processJob(job)
			tg.Mutex.Lock()
			delete(tg.Pending, job.SourcePath)
			tg.Mutex.Unlock()
			if job.Done != nil {
				job.Done(res)
			}

		case <-tg.StopChan:
			log.Printf("thumbnail worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (tg *ThumbnailGenerator) processJob(job ThumbnailJob) ThumbnailResult {
	res := ThumbnailResult{SourcePath: job.SourcePath}
	if _, err := os.Stat(job.SourcePath); err != nil {
		res.Err = err
		return res
	}

	res.ThumbnailPath, res.Err = tg.generate(tg.ctx, job.SourcePath, job.Kind)
	if res.Err != nil {
		log.Printf("ERROR generating thumbnail for %s: %v", job.SourcePath, res.Err)
	}
	return res
}

// QueueJob enqueues a job without blocking. It returns false when the same
// file is already pending or the queue is full.
func (tg *ThumbnailGenerator) QueueJob(job ThumbnailJob) bool {
	tg.Mutex.Lock()
	if tg.Pending[job.SourcePath] {
		tg.Mutex.Unlock()
		log.Printf("thumbnail generation for %s already pending, skipping queue", job.SourcePath)
		return false
	}

	tg.Pending[job.SourcePath] = true
	tg.Mutex.Unlock()

	select {
	case tg.JobQueue <- job:
		return true
	default:
		log.Printf("WARNING: Thumbnail job queue full, failed to queue job for: %s", job.SourcePath)
		tg.Mutex.Lock()
		delete(tg.Pending, job.SourcePath)
		tg.Mutex.Unlock()
		return false
	}
}

// GenerateBatch runs every job through the pool and waits for all of them.
// Results are returned in job order; one failure never stops the others.
func (tg *ThumbnailGenerator) GenerateBatch(ctx context.Context, jobs []ThumbnailJob) []ThumbnailResult {
	results := make([]ThumbnailResult, len(jobs))
	var wg sync.WaitGroup

	for i, job := range jobs {
		i, job := i, job
		results[i] = ThumbnailResult{SourcePath: job.SourcePath}
		job.Done = func(res ThumbnailResult) {
			results[i] = res
			wg.Done()
		}

		wg.Add(1)
		select {
		case tg.JobQueue <- job:
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			wg.Done()
		case <-tg.StopChan:
			results[i].Err = ErrStopped
			wg.Done()
		}
	}

	wg.Wait()
	return results
}

func (tg *ThumbnailGenerator) Stop() {
	tg.stopOnce.Do(func() {
		log.Println("stopping thumbnail generator...")
		tg.cancel()
		close(tg.StopChan)
		tg.Wg.Wait()
		// release batch waiters still holding queued jobs
		for {
			select {
			case job := <-tg.JobQueue:
				if job.Done != nil {
					job.Done(ThumbnailResult{SourcePath: job.SourcePath, Err: ErrStopped})
				}
			default:
				log.Println("all thumbnail workers stopped")
				return
			}
		}
	})
}
