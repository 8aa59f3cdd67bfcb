package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/jaki95/cpceek/internal/storage"
)

// Loader parses the local index copy held in storage.
type Loader struct {
	store     storage.Storage
	indexPath string
	romsDir   string
	logger    *slog.Logger
}

func NewLoader(store storage.Storage, indexPath, romsDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		store:     store,
		indexPath: indexPath,
		romsDir:   romsDir,
		logger:    logger,
	}
}

// Downloaded reports whether the ROM file exists locally with a non-zero size.
func (l *Loader) Downloaded(fileName string) bool {
	size, ok := l.store.Stat(filepath.Join(l.romsDir, fileName))
	return ok && size > 0
}

// LoadFull parses every record of the index.
func (l *Loader) LoadFull(ctx context.Context) (*Catalog, error) {
	return l.load(ctx, NewParser(WithLogger(l.logger)))
}

// BuildWorkList parses the index keeping only records whose ROM file is
// missing or empty in the ROM directory.
func (l *Loader) BuildWorkList(ctx context.Context) (*Catalog, error) {
	return l.load(ctx, NewParser(WithLogger(l.logger), WithSkip(l.Downloaded)))
}

func (l *Loader) load(ctx context.Context, p *Parser) (*Catalog, error) {
	rc, err := l.store.GetReader(l.indexPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("index file does not exist, unable to build the list", "path", l.indexPath)
			return New(), nil
		}
		return nil, fmt.Errorf("failed to open index %s: %w", l.indexPath, err)
	}
	defer rc.Close()

	return p.Parse(ctx, rc)
}
