package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/linesmerrill/shift-handover/config"
	"github.com/linesmerrill/shift-handover/models"
	"github.com/linesmerrill/shift-handover/templates/pptx"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testExportConfig = config.ExportConfig{
	DepartmentTitle: "BÁO CÁO GIAO BAN KHOA NGOẠI",
	Author:          "khoa ngoại",
	Company:         "BUH",
	Footer:          "footer",
	RowsPerSlide:    10,
}

// funcDestination adapts a function to Destination
type funcDestination func(ctx context.Context, name string) (io.WriteCloser, error)

func (f funcDestination) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return f(ctx, name)
}

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func slideCount(t *testing.T, data []byte) int {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	n := 0
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			n++
		}
	}
	return n
}

func TestExporter_ExportToDirectory(t *testing.T) {
	dir := t.TempDir()
	r := models.NewReport("2024-06-01")
	r.ScheduledSurgeriesDetails = []models.SurgeryDetail{{ID: "a", PatientName: "Nguyễn Văn A"}}

	res, err := NewExporter(testExportConfig).Export(context.Background(), r, DirectoryDestination{Dir: dir})

	require.NoError(t, err)
	assert.False(t, res.Cancelled)
	assert.Equal(t, "01-06-2024.pptx", res.FileName)
	assert.Equal(t, filepath.Join(dir, "01-06-2024.pptx"), res.Location)
	assert.Equal(t, 5, res.Slides)

	data, err := os.ReadFile(filepath.Join(dir, "01-06-2024.pptx"))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), res.Bytes)
	assert.Equal(t, 5, slideCount(t, data))
}

func TestExporter_FallsBackWhenWriteFails(t *testing.T) {
	dir := t.TempDir()
	dest := FallbackDestination{
		Primary: funcDestination(func(context.Context, string) (io.WriteCloser, error) {
			return failingWriter{err: errors.New("device removed")}, nil
		}),
		Fallback: DirectoryDestination{Dir: dir},
	}

	res, err := NewExporter(testExportConfig).Export(context.Background(), models.NewReport("2024-06-01"), dest)
	require.NoError(t, err)

	path := filepath.Join(dir, "01-06-2024.pptx")
	assert.Equal(t, path, res.Location)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, info.Size())
}

func TestExporter_Logo(t *testing.T) {
	dir := t.TempDir()
	logoPath := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(logoPath, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	conf := testExportConfig
	conf.LogoPath = logoPath
	var buf bytes.Buffer
	_, err := NewExporter(conf).Export(context.Background(), models.NewReport("2024-06-01"), WriterDestination{W: &buf})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "ppt/media/logo.png")
}

func TestExporter_UnreadableLogoIsSkipped(t *testing.T) {
	conf := testExportConfig
	conf.LogoPath = filepath.Join(t.TempDir(), "missing.png")

	var buf bytes.Buffer
	_, err := NewExporter(conf).Export(context.Background(), models.NewReport("2024-06-01"), WriterDestination{W: &buf})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "ppt/media/")
}

func TestLoadLogo(t *testing.T) {
	dir := t.TempDir()
	jpg := filepath.Join(dir, "logo.JPG")
	require.NoError(t, os.WriteFile(jpg, []byte{0xff, 0xd8}, 0o600))

	logo, err := LoadLogo(jpg)
	require.NoError(t, err)
	assert.Equal(t, "jpg", logo.Ext)

	_, err = LoadLogo(filepath.Join(dir, "logo.svg"))
	assert.ErrorIs(t, err, pptx.ErrUnsupportedImage)

	_, err = LoadLogo(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestExporter_PagesLongLists(t *testing.T) {
	r := models.NewReport("2024-06-01")
	for i := 0; i < 12; i++ {
		r.EmergencySurgeriesDetails = append(r.EmergencySurgeriesDetails, models.SurgeryDetail{ID: string(rune('a' + i))})
	}
	buf := &bufferCloser{}

	res, err := NewExporter(testExportConfig).Export(context.Background(), r, funcDestination(
		func(context.Context, string) (io.WriteCloser, error) { return buf, nil },
	))

	require.NoError(t, err)
	assert.True(t, buf.closed)
	// title, stats, overview, emergency x2, handover
	assert.Equal(t, 5, res.Slides)
	assert.Equal(t, 6, slideCount(t, buf.Bytes()))
}

func TestExporter_CancelledIsNotAnError(t *testing.T) {
	for _, cancelErr := range []error{ErrSaveCancelled, context.Canceled} {
		t.Run(cancelErr.Error(), func(t *testing.T) {
			e := NewExporter(testExportConfig)

			res, err := e.Export(context.Background(), models.NewReport("2024-06-01"), funcDestination(
				func(context.Context, string) (io.WriteCloser, error) { return nil, cancelErr },
			))

			assert.NoError(t, err)
			assert.True(t, res.Cancelled)
			assert.False(t, e.Busy())
		})
	}
}

func TestExporter_FailureReleasesGuard(t *testing.T) {
	e := NewExporter(testExportConfig)
	boom := errors.New("disk full")

	_, err := e.Export(context.Background(), models.NewReport("2024-06-01"), funcDestination(
		func(context.Context, string) (io.WriteCloser, error) { return nil, boom },
	))

	assert.ErrorIs(t, err, boom)
	assert.False(t, e.Busy())

	_, err = e.Export(context.Background(), models.NewReport("2024-06-01"), DirectoryDestination{Dir: t.TempDir()})
	assert.NoError(t, err)
}

func TestExporter_SingleFlight(t *testing.T) {
	e := NewExporter(testExportConfig)
	entered := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := e.Export(context.Background(), models.NewReport("2024-06-01"), funcDestination(
			func(context.Context, string) (io.WriteCloser, error) {
				close(entered)
				<-release
				return &bufferCloser{}, nil
			},
		))
		assert.NoError(t, err)
	}()

	<-entered
	assert.True(t, e.Busy())
	_, err := e.Export(context.Background(), models.NewReport("2024-06-01"), DirectoryDestination{Dir: t.TempDir()})
	assert.ErrorIs(t, err, ErrExportInProgress)

	close(release)
	wg.Wait()
	assert.False(t, e.Busy())
}

func TestExporter_DoesNotModifyReport(t *testing.T) {
	r := models.NewReport("2024-06-01")
	r.SeverePatientHandovers = []models.SeverePatientHandover{{ID: "h", PatientName: "X"}}
	before := r.Clone()

	_, err := NewExporter(testExportConfig).Export(context.Background(), r, funcDestination(
		func(context.Context, string) (io.WriteCloser, error) { return &bufferCloser{}, nil },
	))

	require.NoError(t, err)
	assert.Equal(t, before, r)
}
