package handlers

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.Local)

func logLine(level, at, msg string) string {
	return `{"level":"` + level + `","time":"` + at + `","message":"` + msg + `"}`
}

func newLogsHandler(t *testing.T) *AdminLogsHandler {
	t.Helper()
	dir := t.TempDir()

	today := strings.Join([]string{
		logLine("INFO", "2025-03-10T09:15:00.000+0300", "Сервер запущен"),
		logLine("ERROR", "2025-03-10T09:20:00.000+0300", "БД недоступна"),
		"console line without json",
		logLine("INFO", "2025-03-10T11:00:00.000+0300", "Статья создана"),
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte(today), 0o644))

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, _ = zw.Write([]byte(logLine("WARN", "2025-03-09T23:59:00.000+0300", "Старый лог")))
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-2025-03-09T23-59-59.000.log.gz"), gz.Bytes(), 0o644))

	h := NewAdminLogsHandler(dir)
	h.now = func() time.Time { return fixedNow }
	return h
}

func call(h http.HandlerFunc, target string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var env struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env.Data
}

func TestAdminLogsListDays(t *testing.T) {
	h := newLogsHandler(t)
	rec, data := call(h.ListDays, "/api/admin/logs/days")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["2025-03-09","2025-03-10"]`, string(data["days"]))
}

func TestAdminLogsFilters(t *testing.T) {
	h := newLogsHandler(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"все JSON-строки", "day=2025-03-10", 3},
		{"по уровню", "day=2025-03-10&level=error", 1},
		{"несколько уровней", "day=2025-03-10&level=info,error", 3},
		{"по подстроке", "day=2025-03-10&q=статья", 1},
		{"лимит", "day=2025-03-10&limit=2", 2},
		{"курсор", "day=2025-03-10&cursor=2", 1},
		{"ротированный gzip", "day=2025-03-09", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, data := call(h.GetLogs, "/api/admin/logs?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var items []json.RawMessage
			require.NoError(t, json.Unmarshal(data["items"], &items))
			assert.Len(t, items, tt.want)
		})
	}

	rec, _ := call(h.GetLogs, "/api/admin/logs?day=10-03-2025")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = call(h.GetLogs, "/api/admin/logs?day=2024-01-01")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminLogsStats(t *testing.T) {
	h := newLogsHandler(t)
	rec, data := call(h.Stats, "/api/admin/logs/stats?day=2025-03-10")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]map[string]int
	require.NoError(t, json.Unmarshal(data["stats"], &stats))
	assert.Len(t, stats, 24)
	assert.Equal(t, 1, stats["9"]["INFO"])
	assert.Equal(t, 1, stats["9"]["ERROR"])
	assert.Equal(t, 1, stats["11"]["INFO"])
}

func TestAdminLogsDownload(t *testing.T) {
	h := newLogsHandler(t)
	rec := httptest.NewRecorder()
	h.DownloadRaw(rec, httptest.NewRequest(http.MethodGet, "/api/admin/logs/download?day=2025-03-10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "app.log")
	assert.Contains(t, rec.Body.String(), "Сервер запущен")
}
