package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/linesmerrill/shift-handover/models"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", conf.Env)
	assert.Equal(t, "127.0.0.1:8080", conf.Server.Addr())
	assert.Equal(t, 30*time.Second, conf.Server.RequestTimeout)
	assert.Equal(t, 5242880, conf.Storage.MaxValueBytes)
	assert.Equal(t, "reports.db", filepath.Base(conf.Storage.Path))
	assert.Equal(t, filepath.Join(filepath.Dir(conf.Storage.Path), "backups"), conf.Backup.Dir)
	assert.Equal(t, 10, conf.Export.RowsPerSlide)
	assert.Equal(t, "BÁO CÁO GIAO BAN KHOA NGOẠI", conf.Export.DepartmentTitle)
	assert.Equal(t, "bshieuubdl@gmail.com", conf.Export.Author)
	assert.Equal(t, "BUH", conf.Export.Company)
	assert.Equal(t, "bshieuubdl@gmail.com", conf.Export.Footer)
	assert.Empty(t, conf.Export.LogoPath)
	assert.False(t, conf.Backup.Enabled)
	assert.False(t, conf.Auth.Enabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: production
server:
  port: 9090
storage:
  path: ` + filepath.Join(dir, "db", "reports.db") + `
export:
  dir: ` + dir + `
  rows_per_slide: 5
backup:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("HANDOVER_SERVER_PORT", "9191")
	t.Setenv("HANDOVER_SERVER_REQUEST_TIMEOUT", "5s")
	t.Setenv("HANDOVER_EXPORT_DEPARTMENT_TITLE", "KHOA NGOẠI CHẤN THƯƠNG")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", conf.Env)
	assert.Equal(t, 9191, conf.Server.Port)
	assert.Equal(t, 5*time.Second, conf.Server.RequestTimeout)
	assert.Equal(t, 5, conf.Export.RowsPerSlide)
	assert.Equal(t, dir, conf.Export.Dir)
	assert.Equal(t, "KHOA NGOẠI CHẤN THƯƠNG", conf.Export.DepartmentTitle)
	assert.True(t, conf.Backup.Enabled)
	assert.Equal(t, filepath.Join(dir, "db", "backups"), conf.Backup.Dir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "env", envKey("HANDOVER_ENV"))
	assert.Equal(t, "server.port", envKey("HANDOVER_SERVER_PORT"))
	assert.Equal(t, "storage.max_value_bytes", envKey("HANDOVER_STORAGE_MAX_VALUE_BYTES"))
}

func TestNew(t *testing.T) {
	t.Setenv("HANDOVER_STORAGE_PATH", filepath.Join(t.TempDir(), "reports.db"))
	conf, err := New("")

	assert.NoError(t, err)
	assert.NotEmpty(t, conf)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error it borked", body.Response.Message)
	assert.Equal(t, "bad request", body.Response.Error)
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
