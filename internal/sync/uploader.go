package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	stdsync "sync"
	"sync/atomic"
	"time"

	"filebox/internal/metrics"
	"filebox/internal/storage"

	"go.uber.org/zap"
)

// Per-file failure kinds. They are recorded on the file's Result and never
// abort sibling workers.
var (
	ErrFileRead = errors.New("file read failed")
	ErrTransfer = errors.New("transfer failed")
)

// Job is the immutable sync configuration, created once from CLI input.
type Job struct {
	Root        string
	Prefix      string
	Concurrency int
	DryRun      bool
}

// Putter is the only store capability the uploader needs.
type Putter interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, opts storage.PutOptions) error
}

// Status classifies a per-file outcome.
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Result is the outcome for one file. Result i of an Uploader run
// corresponds to entry i of the input sequence regardless of the order
// in which workers completed them.
type Result struct {
	Key    string
	Path   string
	Bytes  int64
	Status Status
	Err    error
}

// Uploader transfers enumerated files to the store with bounded concurrency.
type Uploader struct {
	job     Job
	store   Putter
	metrics *metrics.Collector
	logger  *zap.Logger

	// readFile is swappable so the worker loop can be exercised without disk I/O
	readFile func(string) ([]byte, error)
}

// NewUploader creates an uploader for the given job
func NewUploader(job Job, store Putter, collector *metrics.Collector, logger *zap.Logger) *Uploader {
	return &Uploader{
		job:      job,
		store:    store,
		metrics:  collector,
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// Run uploads every entry using at most job.Concurrency concurrent workers,
// never more workers than entries. Each index is claimed by exactly one
// worker via an atomic cursor, and Run returns only after every worker has
// terminated. Per-file failures are recorded in the result slice and do not
// stop the remaining work.
func (u *Uploader) Run(ctx context.Context, entries []FileEntry) []Result {
	results := make([]Result, len(entries))

	workers := u.job.Concurrency
	if workers > len(entries) {
		workers = len(entries)
	}

	var cursor atomic.Int64
	var wg stdsync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			log := u.logger.With(zap.Int("worker_id", id))
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= len(entries) {
					return
				}
				results[idx] = u.process(ctx, log, entries[idx])
			}
		}(i)
	}

	wg.Wait()
	return results
}

func (u *Uploader) process(ctx context.Context, log *zap.Logger, entry FileEntry) Result {
	start := time.Now()

	key := MapKey(entry.RelPath, u.job.Prefix)
	res := Result{Key: key, Path: entry.RelPath}

	if u.job.DryRun {
		res.Status = StatusSkipped
		u.metrics.IncSkipped()
		log.Info("Would upload file",
			zap.String("path", entry.RelPath),
			zap.String("key", key),
		)
		return res
	}

	data, err := u.readFile(entry.AbsPath)
	if err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("%w: %s: %w", ErrFileRead, entry.AbsPath, err)
		u.metrics.IncFailed()
		log.Error("Failed to read file",
			zap.String("path", entry.RelPath),
			zap.Error(err),
		)
		return res
	}

	contentType := TypeByName(entry.RelPath)

	opts := storage.PutOptions{ContentType: contentType}
	if err := u.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("%w: %s: %w", ErrTransfer, key, err)
		u.metrics.IncFailed()
		log.Error("Failed to upload file",
			zap.String("key", key),
			zap.Error(err),
		)
		return res
	}

	res.Status = StatusUploaded
	res.Bytes = int64(len(data))
	u.metrics.IncUploaded()
	u.metrics.AddBytes(res.Bytes)
	u.metrics.ObserveDuration(time.Since(start))
	log.Info("Uploaded file",
		zap.String("key", key),
		zap.Int64("size", res.Bytes),
		zap.String("content_type", contentType),
		zap.Duration("duration", time.Since(start)),
	)
	return res
}
