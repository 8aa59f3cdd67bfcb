// Package export writes the XML catalogs describing the local collection.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jaki95/cpceek/internal/catalog"
	"github.com/jaki95/cpceek/internal/storage"
)

const (
	FullFileName = "GameInfo.xml"
	MenuFileName = "Amstrad CPC.xml"
)

// Exporter writes both catalogs into a directory and optionally publishes them.
type Exporter struct {
	store     storage.Storage
	dir       string
	publisher storage.Publisher
	logger    *slog.Logger
}

// NewExporter creates an exporter writing into dir. publisher may be nil.
func NewExporter(store storage.Storage, dir string, publisher storage.Publisher, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: store, dir: dir, publisher: publisher, logger: logger}
}

// WriteFull writes every record of full to GameInfo.xml and returns its path.
func (e *Exporter) WriteFull(ctx context.Context, full *catalog.Catalog) (string, error) {
	data, err := EncodeFull(full.Records())
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", FullFileName, err)
	}
	return e.write(ctx, FullFileName, data, full.Len())
}

// WriteMenu writes the menu catalog for the records of full that are not in
// pending, i.e. the games present locally after this run.
func (e *Exporter) WriteMenu(ctx context.Context, full, pending *catalog.Catalog) (string, error) {
	present := full.Without(pending)
	data, err := EncodeMenu(present.Records())
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", MenuFileName, err)
	}
	return e.write(ctx, MenuFileName, data, present.Len())
}

func (e *Exporter) write(ctx context.Context, name string, data []byte, entries int) (string, error) {
	path := filepath.Join(e.dir, name)
	if err := e.store.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	e.logger.Info("catalog written", "path", path, "entries", entries)

	if e.publisher != nil {
		location, err := e.publisher.Publish(ctx, path, name)
		if err != nil {
			e.logger.Warn("failed to publish catalog", "path", path, "error", err)
		} else {
			e.logger.Info("catalog published", "location", location)
		}
	}
	return path, nil
}
