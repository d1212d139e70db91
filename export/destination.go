package export

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrSaveCancelled is returned by a Destination when the user declined to pick a location
var ErrSaveCancelled = errors.New("save cancelled")

// IsCancelled reports whether err means the user walked away from the save
func IsCancelled(err error) bool {
	return errors.Is(err, ErrSaveCancelled) || errors.Is(err, context.Canceled)
}

// Destination opens the place a rendered deck is written to
type Destination interface {
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}

// DirectoryDestination writes into a fixed folder, the default download location
type DirectoryDestination struct {
	Dir string
}

// Create creates (or truncates) Dir/name
func (d DirectoryDestination) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", d.Dir, err)
	}
	f, err := os.Create(filepath.Join(d.Dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	return f, nil
}

// PromptDestination asks on a terminal where to save. An empty answer takes
// the suggested path, q or end of input cancels.
type PromptDestination struct {
	In  io.Reader
	Out io.Writer
	Dir string
}

// Create asks for a path and creates it
func (p PromptDestination) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	suggested := filepath.Join(p.Dir, name)
	fmt.Fprintf(p.Out, "Save as [%s] (q to cancel): ", suggested)

	answer, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && answer == "" {
		return nil, ErrSaveCancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answer = strings.TrimSpace(answer)
	switch {
	case strings.EqualFold(answer, "q"):
		return nil, ErrSaveCancelled
	case answer == "":
		answer = suggested
	}

	if info, err := os.Stat(answer); err == nil && info.IsDir() {
		answer = filepath.Join(answer, name)
	}
	return DirectoryDestination{Dir: filepath.Dir(answer)}.Create(ctx, filepath.Base(answer))
}

// WriterDestination streams the deck into an existing writer such as an HTTP
// response. Prepare, when set, runs once with the file name before anything is
// written.
type WriterDestination struct {
	W       io.Writer
	Prepare func(name string)
}

// Create returns W; closing it does not close W
func (d WriterDestination) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Prepare != nil {
		d.Prepare(name)
	}
	return nopCloser{d.W}, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// FallbackDestination tries Primary and, when it fails for any reason other
// than cancellation, falls back to Fallback. Writes are held until Close, so
// a deck that cannot be written to Primary still lands in Fallback.
type FallbackDestination struct {
	Primary  Destination
	Fallback Destination
}

// Create opens Primary or Fallback
func (d FallbackDestination) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	w, err := d.Primary.Create(ctx, name)
	if err != nil {
		if IsCancelled(err) {
			return nil, err
		}
		zap.S().Warnw("save location failed, using default download", "file", name, "error", err)
		return d.Fallback.Create(ctx, name)
	}
	return &fallbackWriter{ctx: ctx, name: name, primary: w, fallback: d.Fallback}, nil
}

type fallbackWriter struct {
	ctx      context.Context
	name     string
	primary  io.WriteCloser
	fallback Destination
	buf      bytes.Buffer
	location string
}

func (w *fallbackWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// Name is where the deck ended up, known once Close returns
func (w *fallbackWriter) Name() string {
	return w.location
}

// Close writes the held deck to the primary writer, or to Fallback when that fails
func (w *fallbackWriter) Close() error {
	err := writeAll(w.primary, w.buf.Bytes())
	if err == nil {
		w.location = nameOf(w.primary)
		return nil
	}
	zap.S().Warnw("failed to write to save location, using default download", "file", w.name, "error", err)

	fw, ferr := w.fallback.Create(w.ctx, w.name)
	if ferr == nil {
		ferr = writeAll(fw, w.buf.Bytes())
	}
	if ferr != nil {
		return errors.Join(err, ferr)
	}
	w.location = nameOf(fw)
	return nil
}

// writeAll writes data to w and closes it
func writeAll(w io.WriteCloser, data []byte) error {
	_, err := w.Write(data)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

// nameOf returns the file name behind w, if it has one
func nameOf(w io.Writer) string {
	if f, ok := w.(interface{ Name() string }); ok {
		return f.Name()
	}
	return ""
}
