// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"context"
	"sync"

	"github.com/juju/errors"
	"github.com/samber/lo"
)

const chanSize = 1024

// workerPanic keeps the first panic raised by workers so that it can be
// raised again in the goroutine waiting for them.
type workerPanic struct {
	once   sync.Once
	value  any
	cancel context.CancelFunc
}

func (p *workerPanic) capture() {
	if r := recover(); r != nil {
		p.once.Do(func() {
			p.value = r
			p.cancel()
		})
	}
}

func (p *workerPanic) repanic() {
	if p.value != nil {
		panic(p.value)
	}
}

/* Parallel Schedulers */

// Parallel schedules and runs tasks in parallel. nJobs is the number of tasks. nWorkers is
// the number of executors. worker is the executed function which passed a worker id and a
// job id. The ctx argument allows callers to cancel outstanding work. A panic in a
// worker stops the remaining jobs and is raised again in the caller.
func Parallel(ctx context.Context, nJobs, nWorkers int, worker func(workerId, jobId int) error) error {
	if nWorkers <= 1 {
		for i := 0; i < nJobs; i++ {
			if err := ctx.Err(); err != nil {
				return errors.Trace(err)
			}
			if err := worker(0, i); err != nil {
				return errors.Trace(err)
			}
		}
		return nil
	}
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := &workerPanic{cancel: cancel}
	c := make(chan int, chanSize)
	// producer
	go func() {
		defer close(c)
		for i := 0; i < nJobs; i++ {
			select {
			case <-workerCtx.Done():
				return
			case c <- i:
			}
		}
	}()
	// consumer
	var wg sync.WaitGroup
	errs := make([]error, nJobs)
	for j := 0; j < nWorkers; j++ {
		workerId := j
		wg.Go(func() {
			defer p.capture()
			for {
				select {
				case <-workerCtx.Done():
					return
				case jobId, ok := <-c:
					if !ok {
						return
					}
					if err := worker(workerId, jobId); err != nil {
						errs[jobId] = err
						return
					}
				}
			}
		})
	}
	wg.Wait()
	p.repanic()
	// check errors
	for _, err := range errs {
		if err != nil {
			return errors.Trace(err)
		}
	}
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// For runs worker(i) for i in [0, nJobs) with nWorkers goroutines.
func For(ctx context.Context, nJobs, nWorkers int, worker func(int)) error {
	return Parallel(ctx, nJobs, nWorkers, func(_, jobId int) error {
		worker(jobId)
		return nil
	})
}

// ForEach runs worker on every element of a with nWorkers goroutines.
func ForEach[T any](ctx context.Context, a []T, nWorkers int, worker func(int, T)) error {
	if nWorkers <= 1 {
		for i, v := range a {
			if err := ctx.Err(); err != nil {
				return errors.Trace(err)
			}
			worker(i, v)
		}
		return nil
	}
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := &workerPanic{cancel: cancel}
	c := make(chan lo.Tuple2[int, T], chanSize)
	// producer
	go func() {
		defer close(c)
		for i, v := range a {
			select {
			case <-workerCtx.Done():
				return
			case c <- lo.Tuple2[int, T]{A: i, B: v}:
			}
		}
	}()
	// consumer
	var wg sync.WaitGroup
	for j := 0; j < nWorkers; j++ {
		wg.Go(func() {
			defer p.capture()
			for job := range c {
				if workerCtx.Err() != nil {
					continue
				}
				worker(job.A, job.B)
			}
		})
	}
	wg.Wait()
	p.repanic()
	return errors.Trace(ctx.Err())
}

// Ranges splits [0, n) into consecutive ranges of at most size elements.
func Ranges(n, size int) []lo.Tuple2[int, int] {
	if n <= 0 || size <= 0 {
		return nil
	}
	ranges := make([]lo.Tuple2[int, int], 0, (n+size-1)/size)
	for begin := 0; begin < n; begin += size {
		ranges = append(ranges, lo.Tuple2[int, int]{A: begin, B: min(begin+size, n)})
	}
	return ranges
}
