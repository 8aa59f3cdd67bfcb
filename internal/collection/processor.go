// Package collection runs the end to end sync of the local ROM collection
// against the remote archive.
package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/jaki95/cpceek/internal/catalog"
	"github.com/jaki95/cpceek/internal/confirm"
	"github.com/jaki95/cpceek/internal/downloader"
	"github.com/jaki95/cpceek/internal/export"
	"github.com/jaki95/cpceek/internal/progress"
	"github.com/jaki95/cpceek/internal/storage"
	"github.com/jaki95/cpceek/internal/transport"
)

const (
	promptFullExport = "Generate full game info list (XML)? (Y/N)"
	promptMenuExport = "Generate menu game list (XML)? (Y/N)"
)

type Options struct {
	// CatalogURL is the remote directory holding the index and notice files.
	CatalogURL   string
	IndexFile    string
	WhatsNewFile string
	RomsDir      string
	WorkDir      string

	// ProgressOutput receives the download progress bar. Nil disables it.
	ProgressOutput io.Writer
}

// Summary describes what a run did.
type Summary struct {
	Pending          int
	DownloadDeclined bool
	Downloads        downloader.Result
	FullExport       string
	MenuExport       string
}

type Processor struct {
	store     storage.Storage
	driver    *downloader.Driver
	loader    *catalog.Loader
	confirmer confirm.Confirmer
	exporter  *export.Exporter
	opts      Options
	logger    *slog.Logger
}

func NewProcessor(
	store storage.Storage,
	tr transport.Transport,
	confirmer confirm.Confirmer,
	exporter *export.Exporter,
	opts Options,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:     store,
		driver:    downloader.NewDriver(tr, store, logger),
		loader:    catalog.NewLoader(store, filepath.Join(opts.WorkDir, opts.IndexFile), opts.RomsDir, logger),
		confirmer: confirmer,
		exporter:  exporter,
		opts:      opts,
		logger:    logger,
	}
}

// Sync fetches the notice and index files, downloads missing ROMs and offers
// both exports.
func (p *Processor) Sync(ctx context.Context) (*Summary, error) {
	if err := p.prepare(); err != nil {
		return nil, err
	}

	p.logger.Info("Thanks to Nicolas Campbell for making his server publicly available", "address", p.opts.CatalogURL)
	p.logLocalCollection()

	if p.opts.WhatsNewFile != "" {
		p.logger.Info("Checking what's new...")
		p.fetchSingle(ctx, progress.StageWhatsNew, p.opts.WhatsNewFile)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Info("Checking CPC index...")
	p.fetchSingle(ctx, progress.StageIndex, p.opts.IndexFile)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pending, err := p.loader.BuildWorkList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build download list: %w", err)
	}

	summary := &Summary{Pending: pending.Len()}
	if err := p.downloadPending(ctx, pending, summary); err != nil {
		return summary, err
	}

	if err := p.exports(ctx, pending, summary); err != nil {
		return summary, err
	}

	p.logger.Info("Job complete.")
	return summary, nil
}

// Missing lists the ROMs the local index references but the ROM directory
// lacks, without contacting the server.
func (p *Processor) Missing(ctx context.Context) (*catalog.Catalog, error) {
	return p.loader.BuildWorkList(ctx)
}

// Export offers both exports against the current local index. The menu
// export leaves out ROMs that are still missing.
func (p *Processor) Export(ctx context.Context) (*Summary, error) {
	if err := p.prepare(); err != nil {
		return nil, err
	}

	pending, err := p.loader.BuildWorkList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build download list: %w", err)
	}

	summary := &Summary{Pending: pending.Len()}
	if err := p.exports(ctx, pending, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func (p *Processor) prepare() error {
	for _, dir := range []string{p.opts.RomsDir, p.opts.WorkDir} {
		if err := p.store.EnsureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) logLocalCollection() {
	files, err := p.store.ListFiles(p.opts.RomsDir, "")
	if err != nil {
		p.logger.Warn("could not list rom directory", "dir", p.opts.RomsDir, "error", err)
		return
	}
	p.logger.Info("local collection", "dir", p.opts.RomsDir, "files", len(files))
}

func (p *Processor) fetchSingle(ctx context.Context, stage progress.Stage, name string) downloader.Outcome {
	counter := progress.NewCounter(stage, 1)
	source := p.opts.CatalogURL + name
	dest := filepath.Join(p.opts.WorkDir, name)
	return p.driver.CheckExistsAndDownload(ctx, source, dest, counter)
}

func (p *Processor) downloadPending(ctx context.Context, pending *catalog.Catalog, summary *Summary) error {
	if pending.Len() == 0 {
		p.logger.Info("The download list is empty.")
		return nil
	}

	ok, err := p.gate(fmt.Sprintf("You are missing %d ROMs. Would you like to download them now? (Y/N)", pending.Len()))
	if err != nil {
		return err
	}
	if !ok {
		summary.DownloadDeclined = true
		return nil
	}

	counter := progress.NewCounter(progress.StageROMs, pending.Len())
	if p.opts.ProgressOutput != nil {
		bar := progress.NewBar(p.opts.ProgressOutput, pending.Len(), "[cyan][roms][reset] Downloading...")
		counter.AddListener(progress.BarListener(bar))
	}

	summary.Downloads = p.driver.DownloadAll(ctx, pending, p.opts.RomsDir, counter)
	return ctx.Err()
}

func (p *Processor) exports(ctx context.Context, pending *catalog.Catalog, summary *Summary) error {
	var full *catalog.Catalog

	loadFull := func() (*catalog.Catalog, error) {
		if full != nil {
			return full, nil
		}
		c, err := p.loader.LoadFull(ctx)
		if err != nil {
			return nil, err
		}
		full = c
		return full, nil
	}

	ok, err := p.gate(promptFullExport)
	if err != nil {
		return err
	}
	if ok {
		if c, err := loadFull(); err != nil {
			p.logger.Error("failed to read index for export", "error", err)
		} else if path, err := p.exporter.WriteFull(ctx, c); err != nil {
			p.logger.Error("full export failed", "error", err)
		} else {
			summary.FullExport = path
		}
	}

	ok, err = p.gate(promptMenuExport)
	if err != nil {
		return err
	}
	if ok {
		if c, err := loadFull(); err != nil {
			p.logger.Error("failed to read index for export", "error", err)
		} else if path, err := p.exporter.WriteMenu(ctx, c, pending); err != nil {
			p.logger.Error("menu export failed", "error", err)
		} else {
			summary.MenuExport = path
		}
	}
	return nil
}

// gate asks the confirmer. Closed input counts as a no; an interrupt ends
// the run.
func (p *Processor) gate(prompt string) (bool, error) {
	p.logger.Info(prompt)
	ok, err := p.confirmer.Confirm(prompt)
	if err == nil {
		return ok, nil
	}
	if errors.Is(err, confirm.ErrNoAnswer) {
		p.logger.Warn("no answer given, assuming no", "prompt", prompt)
		return false, nil
	}
	return false, fmt.Errorf("confirmation failed: %w", err)
}
