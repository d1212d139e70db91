package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/shift-handover/config"
	"github.com/linesmerrill/shift-handover/metrics"
	"github.com/linesmerrill/shift-handover/models"
	"github.com/linesmerrill/shift-handover/templates/pptx"
)

// ErrExportInProgress is returned when Export is called while another export runs
var ErrExportInProgress = errors.New("export already in progress")

// Result describes a finished export
type Result struct {
	FileName string `json:"fileName"`
	Location string `json:"location,omitempty"`
	Slides   int    `json:"slides"`
	Bytes    int64  `json:"bytes"`
	// Cancelled is set when the user declined the save; it is not an error
	Cancelled bool `json:"cancelled"`
}

// Exporter renders reports into slide decks, one at a time
type Exporter struct {
	busy         atomic.Bool
	opts         Options
	rowsPerSlide int
	now          func() time.Time
}

// NewExporter builds an Exporter from the export config section. A logo that
// cannot be read is logged and left out of the deck.
func NewExporter(conf config.ExportConfig) *Exporter {
	opts := OptionsFromConfig(conf)
	if conf.LogoPath != "" {
		logo, err := LoadLogo(conf.LogoPath)
		if err != nil {
			zap.S().Warnw("failed to load logo, exporting without it", "path", conf.LogoPath, "error", err)
		} else {
			opts.Logo = logo
		}
	}
	return &Exporter{
		opts:         opts,
		rowsPerSlide: conf.RowsPerSlide,
		now:          time.Now,
	}
}

// LoadLogo reads a PNG, JPEG or GIF logo file
func LoadLogo(path string) (*Logo, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "jpg", "jpeg", "gif":
	default:
		return nil, fmt.Errorf("%w: %s", pptx.ErrUnsupportedImage, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	return &Logo{Data: data, Ext: ext}, nil
}

// Busy reports whether an export is running
func (e *Exporter) Busy() bool {
	return e.busy.Load()
}

// Export projects r, renders it and writes it to dest. It never modifies r.
// A cancelled save returns a Result with Cancelled set and a nil error.
func (e *Exporter) Export(ctx context.Context, r models.Report, dest Destination) (Result, error) {
	m := metrics.Get()
	if !e.busy.CompareAndSwap(false, true) {
		m.ObserveExport(metrics.ExportBusy, 0)
		return Result{}, ErrExportInProgress
	}
	defer e.busy.Store(false)

	start := time.Now()
	res, err := e.export(ctx, r, dest)
	switch {
	case err != nil:
		m.ObserveExport(metrics.ExportFailed, time.Since(start))
		zap.S().Errorw("export failed", "date", r.ReportDate, "error", err)
	case res.Cancelled:
		m.ObserveExport(metrics.ExportCancelled, time.Since(start))
		zap.S().Infow("export cancelled", "date", r.ReportDate)
	default:
		m.ObserveExport(metrics.ExportSuccess, time.Since(start))
		zap.S().Infow("deck exported", "file", res.FileName, "location", res.Location, "slides", res.Slides, "bytes", res.Bytes)
	}
	return res, err
}

func (e *Exporter) export(ctx context.Context, r models.Report, dest Destination) (Result, error) {
	deck := Project(r, e.opts)
	res := Result{FileName: FileName(r.ReportDate), Slides: len(deck.Slides)}

	var buf bytes.Buffer
	if err := Render(&buf, deck, e.rowsPerSlide, e.now()); err != nil {
		return res, fmt.Errorf("failed to render deck: %w", err)
	}

	w, err := dest.Create(ctx, res.FileName)
	if IsCancelled(err) {
		res.Cancelled = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	n, err := io.Copy(w, &buf)
	res.Bytes = n
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, fmt.Errorf("failed to write %s: %w", res.FileName, err)
	}
	res.Location = nameOf(w)
	return res, nil
}
