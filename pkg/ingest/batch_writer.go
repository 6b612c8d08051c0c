package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBatchWriterClosed is returned when writing to a closed BatchWriter.
var ErrBatchWriterClosed = errors.New("batch writer closed")

// WriteFunc performs database writes inside the batch transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// pending is a queued write and the callback told how its batch ended.
type pending struct {
	write WriteFunc
	done  func(error)
}

// BatchWriter serializes writes from many goroutines onto one committer that
// groups them into transactions. sqlite allows a single writer, so funnelling
// every write through here avoids lock contention.
type BatchWriter struct {
	db       *sql.DB
	size     int
	interval time.Duration
	onError  func(error)

	in   chan pending
	done chan struct{}

	mu     sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error
}

// NewBatchWriter starts a writer committing every size writes or every
// interval, whichever comes first. An interval of 0 disables timed flushes.
// onError, if set, sees every failed batch.
func NewBatchWriter(db *sql.DB, size int, interval time.Duration, onError func(error)) *BatchWriter {
	if size <= 0 {
		size = 10
	}
	bw := &BatchWriter{
		db:       db,
		size:     size,
		interval: interval,
		onError:  onError,
		in:       make(chan pending, size),
		done:     make(chan struct{}),
	}
	go bw.run()
	return bw
}

// Submit hands w to the committer.
func (bw *BatchWriter) Submit(ctx context.Context, w WriteFunc) error {
	return bw.SubmitNotify(ctx, w, nil)
}

// SubmitNotify hands w to the committer. done, if set, is called from the
// committer once the batch holding w has ended: with nil after the commit,
// or with the batch error after a rollback.
func (bw *BatchWriter) SubmitNotify(ctx context.Context, w WriteFunc, done func(error)) error {
	bw.mu.RLock()
	defer bw.mu.RUnlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	select {
	case bw.in <- pending{write: w, done: done}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (bw *BatchWriter) run() {
	defer close(bw.done)

	var tick <-chan time.Time
	if bw.interval > 0 {
		t := time.NewTicker(bw.interval)
		defer t.Stop()
		tick = t.C
	}

	batch := make([]pending, 0, bw.size)
	for {
		select {
		case w, ok := <-bw.in:
			if !ok {
				bw.commit(batch)
				return
			}
			batch = append(batch, w)
			if len(batch) >= bw.size {
				bw.commit(batch)
				batch = batch[:0]
			}
		case <-tick:
			bw.commit(batch)
			batch = batch[:0]
		}
	}
}

func (bw *BatchWriter) commit(batch []pending) {
	if len(batch) == 0 {
		return
	}
	err := bw.execute(batch)
	for _, p := range batch {
		if p.done != nil {
			p.done(err)
		}
	}
	if err != nil {
		bw.errMu.Lock()
		if bw.err == nil {
			bw.err = err
		}
		bw.errMu.Unlock()
		if bw.onError != nil {
			bw.onError(err)
		}
	}
}

func (bw *BatchWriter) execute(batch []pending) error {
	// Committing must survive the caller's context being canceled.
	ctx := context.Background()

	// Without a database the writes run with a nil tx; tests use this.
	if bw.db == nil {
		for _, p := range batch {
			if err := p.write(ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()
	for _, p := range batch {
		if err := p.write(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch (%d writes): %w", len(batch), err)
	}
	return nil
}

// Close flushes pending writes, stops the committer and returns the first
// batch error seen.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	close(bw.in)
	bw.mu.Unlock()
	<-bw.done

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.err
}
