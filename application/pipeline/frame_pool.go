package pipeline

import (
	"context"
	"sync"

	"vidredact/domain/model"
	"vidredact/domain/ports"
	"vidredact/domain/transform"
)

// FramePool runs the region transform over a decoded frame stream. The
// transform has no memory across frames, so with more than one worker the
// frames are transformed concurrently; a reorder buffer keeps writes in
// strict source order either way.
type FramePool struct {
	workers int
	region  model.Region
	blur    model.BlurParams
}

// NewFramePool creates a pool with the given worker count. A count of 1
// reproduces the strictly sequential read-transform-write loop.
func NewFramePool(workers int, region model.Region, blur model.BlurParams) *FramePool {
	if workers < 1 {
		workers = 1
	}
	return &FramePool{workers: workers, region: region, blur: blur}
}

type frameTask struct {
	seq   int
	frame []byte
}

// Run decodes frames from src, transforms them, and appends them to dst in
// order. It stops at end-of-stream or once the declared frame count is
// reached, whichever comes first, and returns the number of frames read.
// End-of-stream before the declared count is a normal stop, not an error.
func (p *FramePool) Run(ctx context.Context, src ports.FrameSource, dst ports.FrameWriter) (int, error) {
	info := src.Info()
	if p.workers == 1 {
		return p.runSequential(ctx, src, dst, info)
	}
	return p.runConcurrent(ctx, src, dst, info)
}

func (p *FramePool) runSequential(ctx context.Context, src ports.FrameSource, dst ports.FrameWriter, info model.SourceInfo) (int, error) {
	read := 0
	for info.Frames <= 0 || read < info.Frames {
		if err := ctx.Err(); err != nil {
			return read, err
		}
		frame, ok := src.ReadFrame()
		if !ok {
			break
		}
		read++

		out, err := transform.Apply(frame, info.Width, info.Height, p.region, p.blur)
		if err != nil {
			return read, err
		}
		if err := dst.WriteFrame(out); err != nil {
			return read, err
		}
	}
	return read, nil
}

func (p *FramePool) runConcurrent(ctx context.Context, src ports.FrameSource, dst ports.FrameWriter, info model.SourceInfo) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan frameTask, p.workers)
	results := make(chan frameTask, p.workers)
	errCh := make(chan error, p.workers+2)
	readCh := make(chan int, 1)

	// Reader: single goroutine owns the decoder handle.
	go func() {
		defer close(tasks)
		read := 0
		defer func() { readCh <- read }()
		for info.Frames <= 0 || read < info.Frames {
			if ctx.Err() != nil {
				return
			}
			frame, ok := src.ReadFrame()
			if !ok {
				return
			}
			select {
			case tasks <- frameTask{seq: read, frame: frame}:
				read++
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				out, err := transform.Apply(t.frame, info.Width, info.Height, p.region, p.blur)
				if err != nil {
					errCh <- err
					cancel()
					return
				}
				select {
				case results <- frameTask{seq: t.seq, frame: out}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Writer: reorder buffer keeps output frames in source order.
	pending := make(map[int][]byte)
	next := 0
	for t := range results {
		pending[t.seq] = t.frame
		for {
			frame, ok := pending[next]
			if !ok {
				break
			}
			if err := dst.WriteFrame(frame); err != nil {
				errCh <- err
				cancel()
				// Drain so the workers can finish and close results.
				for range results {
				}
				break
			}
			delete(pending, next)
			next++
		}
	}

	read := <-readCh

	select {
	case err := <-errCh:
		return read, err
	default:
	}
	// Errors reach errCh before the canceling side cancels, so a canceled
	// context here can only come from the caller.
	if err := ctx.Err(); err != nil {
		return read, err
	}
	return read, nil
}
