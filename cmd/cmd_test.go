package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/shift-handover/config"
	"github.com/linesmerrill/shift-handover/databases"
	"github.com/linesmerrill/shift-handover/models"
)

// setupEnv points every path of the config at a temp dir
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HANDOVER_STORAGE_PATH", filepath.Join(dir, "reports.db"))
	t.Setenv("HANDOVER_EXPORT_DIR", filepath.Join(dir, "downloads"))
	t.Setenv("HANDOVER_BACKUP_DIR", filepath.Join(dir, "backups"))
	return dir
}

func seedReport(t *testing.T, dir string, r models.Report) {
	t.Helper()
	store, err := databases.NewLocalStore(config.StorageConfig{Path: filepath.Join(dir, "reports.db")})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, databases.NewReportDatabase(store).Save(context.Background(), r))
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"serve", "show", "list", "export", "backup"}

	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			var found bool
			for _, c := range root.Commands() {
				if c.Name() == name {
					found = true
					assert.NotEmpty(t, c.Short, "%s should have a short description", name)
					assert.NotNil(t, c.RunE, "%s should have RunE", name)
				}
			}
			assert.True(t, found, "%s should be registered", name)
		})
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestExportCommandFlags(t *testing.T) {
	root := NewRootCmd()
	c, _, err := root.Find([]string{"export"})
	require.NoError(t, err)
	assert.NotNil(t, c.Flags().Lookup("out"))
	assert.NotNil(t, c.Flags().Lookup("prompt"))
}

func TestShow_MissingDatePrintsEmptyReport(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "show", "2024-06-01")
	require.NoError(t, err)

	var got models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, models.NewReport("2024-06-01"), got)
}

func TestShow_RequiresDate(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "show")
	assert.Error(t, err)
}

func TestShowAndList_SavedReport(t *testing.T) {
	dir := setupEnv(t)
	r := models.NewReport("2024-06-01")
	r.PreviousPatients = 40
	r.OnDutyTeam.Doctors = "BS. An"
	seedReport(t, dir, r)
	seedReport(t, dir, models.NewReport("2024-05-31"))

	out, err := run(t, "", "show", "2024-06-01")
	require.NoError(t, err)
	var got models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 40, got.PreviousPatients)
	assert.Equal(t, "BS. An", got.OnDutyTeam.Doctors)

	out, err = run(t, "", "list")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-31\n2024-06-01\n", out)
}

func TestExport_WritesToOutDir(t *testing.T) {
	dir := setupEnv(t)
	seedReport(t, dir, models.NewReport("2024-06-01"))
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "", "export", "2024-06-01", "--out", outDir)
	require.NoError(t, err)

	path := filepath.Join(outDir, "01-06-2024.pptx")
	assert.Contains(t, out, path)
	assert.Contains(t, out, "4 slides")
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestExport_DefaultsToConfiguredDir(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, "", "export", "2024-06-01")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "downloads", "01-06-2024.pptx"))
	assert.NoError(t, err)
}

func TestExport_PromptCancelled(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "q\n", "export", "2024-06-01", "--prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "export cancelled")

	_, err = os.Stat(filepath.Join(dir, "downloads", "01-06-2024.pptx"))
	assert.True(t, os.IsNotExist(err))
}

func TestExport_PromptChosenPath(t *testing.T) {
	dir := setupEnv(t)
	target := filepath.Join(dir, "chosen.pptx")

	out, err := run(t, target+"\n", "export", "2024-06-01", "--prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+target)

	_, err = os.Stat(target)
	assert.NoError(t, err)
}

func TestBackup(t *testing.T) {
	dir := setupEnv(t)
	seedReport(t, dir, models.NewReport("2024-06-01"))

	out, err := run(t, "", "backup")
	require.NoError(t, err)

	dst := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(dir, "backups"), filepath.Dir(dst))
	_, err = os.Stat(dst)
	assert.NoError(t, err)
}

func TestConfigFlag_BadFile(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "list")
	assert.Error(t, err)
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	setupEnv(t)
	t.Setenv("HANDOVER_SERVER_PORT", "0")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	root := NewRootCmd()
	root.SetArgs([]string{"serve"})
	root.SetOut(&bytes.Buffer{})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop after the context was cancelled")
	}
}
