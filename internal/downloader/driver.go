// Package downloader decides per item whether a remote file must be fetched
// and performs the transfer into local storage.
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jaki95/cpceek/internal/catalog"
	"github.com/jaki95/cpceek/internal/progress"
	"github.com/jaki95/cpceek/internal/storage"
	"github.com/jaki95/cpceek/internal/transport"
)

// Outcome is the result of one transfer decision.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeDownloaded
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result tallies the outcomes of a batch.
type Result struct {
	Downloaded int
	Skipped    int
	Failed     int
}

func (r *Result) add(o Outcome) {
	switch o {
	case OutcomeDownloaded:
		r.Downloaded++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

func (r Result) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// Driver reconciles remote resources with their local copies.
type Driver struct {
	transport transport.Transport
	store     storage.Storage
	logger    *slog.Logger
}

func NewDriver(t transport.Transport, store storage.Storage, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{transport: t, store: store, logger: logger}
}

// CheckExistsAndDownload fetches source into dest unless dest already exists
// with the same size as the remote file. Transfer errors are logged and
// reported as OutcomeFailed, they never stop the caller.
func (d *Driver) CheckExistsAndDownload(ctx context.Context, source, dest string, counter *progress.Counter) Outcome {
	item := filepath.Base(dest)

	localSize, exists := d.store.Stat(dest)
	if !exists {
		d.logger.Info("file does not exist, downloading", "path", dest)
	} else if d.sameSize(ctx, source, localSize) {
		d.logger.Info("file exists and is same size, ignoring", "path", dest)
		if counter != nil {
			counter.Skip(item)
		}
		return OutcomeSkipped
	} else {
		d.logger.Info("file exists but size is different", "path", dest)
	}

	n, err := d.download(ctx, source, dest)
	if err != nil {
		d.logger.Error("there was an error downloading the file", "source", source, "error", err)
		if counter != nil {
			counter.Fail(item)
		}
		return OutcomeFailed
	}

	remaining := 0
	if counter != nil {
		remaining = counter.Complete(item)
	}
	d.logger.Info("complete", "path", dest, "bytes", n, "remaining", remaining)
	return OutcomeDownloaded
}

func (d *Driver) sameSize(ctx context.Context, source string, localSize int64) bool {
	if d.transport == nil {
		return false
	}
	remoteSize, err := d.transport.Size(ctx, source)
	if err != nil {
		d.logger.Warn("there was an error requesting the file size", "source", source, "error", err)
		return false
	}
	return remoteSize == localSize
}

func (d *Driver) download(ctx context.Context, source, dest string) (int64, error) {
	if d.transport == nil {
		return 0, ErrNoTransport
	}
	if dest == "" {
		return 0, ErrEmptyTarget
	}

	d.logger.Debug("downloading", "source", source)

	f, err := d.store.CreateAtomic(dest)
	if err != nil {
		return 0, err
	}

	n, err := d.transport.Fetch(ctx, source, f)
	if err != nil {
		f.Abort()
		return n, err
	}
	if err := f.Commit(); err != nil {
		return n, fmt.Errorf("failed to store %s: %w", dest, err)
	}
	return n, nil
}

// DownloadAll runs the transfer decision for every entry of the work list in
// catalog order, saving each file under romsDir with its catalog key.
func (d *Driver) DownloadAll(ctx context.Context, work *catalog.Catalog, romsDir string, counter *progress.Counter) Result {
	var result Result
	if counter == nil {
		counter = progress.NewCounter(progress.StageROMs, work.Len())
	}

	for _, name := range work.Keys() {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("download interrupted", "error", err, "remaining", counter.Remaining())
			break
		}

		rec, _ := work.Get(name)
		dest := filepath.Join(romsDir, name)
		result.add(d.CheckExistsAndDownload(ctx, rec.ResourcePath, dest, counter))
	}

	d.logger.Info("rom downloads finished",
		"downloaded", result.Downloaded,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result
}
