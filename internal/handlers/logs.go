package handlers

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"wikihub/internal/utils/helpers"
)

// AdminLogsHandler читает JSON-логи, которые пишет lumberjack:
// текущий app.log и ротированные app-<timestamp>.log[.gz].
type AdminLogsHandler struct {
	LogDir    string
	Retention int // дней
	now       func() time.Time
}

func NewAdminLogsHandler(logDir string) *AdminLogsHandler {
	if logDir == "" {
		logDir = "logs"
	}
	return &AdminLogsHandler{LogDir: logDir, Retention: 14, now: time.Now}
}

// ListDays
// @Summary      Доступные дни логов
// @Description  Список дат (YYYY-MM-DD), за которые есть файлы логов.
// @Tags         admin-logs
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} helpers.Response
// @Failure      401 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Router       /api/admin/logs/days [get]
func (h *AdminLogsHandler) ListDays(w http.ResponseWriter, r *http.Request) {
	today := h.now().Local()
	days := []string{}
	for i := 0; i < h.Retention; i++ {
		d := today.AddDate(0, 0, -i).Format("2006-01-02")
		if files, err := h.listFilesForDay(d); err == nil && len(files) > 0 {
			days = append(days, d)
		}
	}
	sort.Strings(days)
	helpers.JSON(w, http.StatusOK, map[string]any{"days": days})
}

// GetLogs
// @Summary      Логи за день
// @Description  Записи за день с фильтрами по уровню, часу и подстроке. Пагинация курсором (номер строки).
// @Tags         admin-logs
// @Security     BearerAuth
// @Produce      json
// @Param        day     query  string true  "Дата (YYYY-MM-DD)"
// @Param        level   query  string false "CSV уровней: debug,info,warn,error"
// @Param        hour    query  int    false "Час (0-23)"
// @Param        q       query  string false "Поиск по подстроке"
// @Param        limit   query  int    false "Лимит (по умолч. 200, макс. 1000)"
// @Param        cursor  query  int    false "Номер строки, с которой продолжить"
// @Success      200 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Router       /api/admin/logs [get]
func (h *AdminLogsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day := q.Get("day")
	if !reDay.MatchString(day) {
		helpers.Error(w, http.StatusBadRequest, "Invalid day, expected YYYY-MM-DD")
		return
	}

	f := logFilter{levels: toUpperSet(q.Get("level"))}
	if s := strings.TrimSpace(q.Get("q")); s != "" {
		f.substr = regexp.MustCompile("(?i)" + regexp.QuoteMeta(s))
	}
	if hv, err := strconv.Atoi(q.Get("hour")); err == nil && hv >= 0 && hv <= 23 {
		f.hour = &hv
	}

	limit := clampAtoi(q.Get("limit"), 200, 1, 1000)
	cursor := clampAtoi(q.Get("cursor"), 0, 0, 10_000_000)

	lineNo := 0
	items := []json.RawMessage{}
	err := h.forEachDayLine(day, func(raw []byte) bool {
		lineNo++
		if lineNo <= cursor {
			return true
		}
		if f.match(raw) {
			items = append(items, append(json.RawMessage{}, raw...))
		}
		return len(items) < limit
	})
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "No logs for this day")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]any{
		"day":        day,
		"items":      items,
		"nextCursor": lineNo,
	})
}

// Stats
// @Summary      Статистика логов по часам
// @Description  Количество записей каждого уровня по часам за день.
// @Tags         admin-logs
// @Security     BearerAuth
// @Produce      json
// @Param        day query string true "Дата (YYYY-MM-DD)"
// @Success      200 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Router       /api/admin/logs/stats [get]
func (h *AdminLogsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if !reDay.MatchString(day) {
		helpers.Error(w, http.StatusBadRequest, "Invalid day, expected YYYY-MM-DD")
		return
	}

	stats := make(map[int]map[string]int, 24)
	for hr := 0; hr < 24; hr++ {
		stats[hr] = map[string]int{}
	}
	_ = h.forEachDayLine(day, func(raw []byte) bool {
		e, ok := parseEntry(raw)
		if ok && !e.at.IsZero() && e.level != "" {
			stats[e.at.Hour()][e.level]++
		}
		return true
	})

	helpers.JSON(w, http.StatusOK, map[string]any{"day": day, "stats": stats})
}

// DownloadRaw
// @Summary      Скачать лог-файл
// @Description  Отдаёт первый файл логов за день как есть (gzip, если ротирован).
// @Tags         admin-logs
// @Security     BearerAuth
// @Produce      octet-stream
// @Param        day query string true "Дата (YYYY-MM-DD)"
// @Success      200 {file} file
// @Failure      404 {object} helpers.Response
// @Router       /api/admin/logs/download [get]
func (h *AdminLogsHandler) DownloadRaw(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if !reDay.MatchString(day) {
		helpers.Error(w, http.StatusBadRequest, "Invalid day, expected YYYY-MM-DD")
		return
	}
	files, err := h.listFilesForDay(day)
	if err != nil || len(files) == 0 {
		helpers.Error(w, http.StatusNotFound, "No logs for this day")
		return
	}
	fpath := files[0]
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(fpath)))
	http.ServeFile(w, r, fpath)
}

// ====== чтение файлов ======

var reDay = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// zap ISO8601: 2006-01-02T15:04:05.000Z0700
var logTimeLayouts = []string{"2006-01-02T15:04:05.000Z0700", time.RFC3339Nano}

type logEntry struct {
	level string
	at    time.Time
}

func parseEntry(raw []byte) (logEntry, bool) {
	var obj struct {
		Level string `json:"level"`
		Time  string `json:"time"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return logEntry{}, false
	}
	e := logEntry{level: strings.ToUpper(obj.Level)}
	for _, layout := range logTimeLayouts {
		if t, err := time.Parse(layout, obj.Time); err == nil {
			e.at = t
			break
		}
	}
	return e, true
}

type logFilter struct {
	levels map[string]bool
	hour   *int
	substr *regexp.Regexp
}

func (f logFilter) match(raw []byte) bool {
	if f.substr != nil && !f.substr.Match(raw) {
		return false
	}
	e, ok := parseEntry(raw)
	if !ok {
		return false // консольный формат пропускаем
	}
	if len(f.levels) > 0 && !f.levels[e.level] {
		return false
	}
	if f.hour != nil && !e.at.IsZero() && e.at.Hour() != *f.hour {
		return false
	}
	return true
}

func (h *AdminLogsHandler) listFilesForDay(day string) ([]string, error) {
	entries, err := os.ReadDir(h.LogDir)
	if err != nil {
		return nil, err
	}
	today := h.now().Local().Format("2006-01-02")

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case name == "app.log" && day == today:
			files = append(files, filepath.Join(h.LogDir, name))
		case strings.HasPrefix(name, "app-"+day) &&
			(strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".gz")):
			files = append(files, filepath.Join(h.LogDir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (h *AdminLogsHandler) forEachDayLine(day string, handle func([]byte) bool) error {
	files, err := h.listFilesForDay(day)
	if err != nil || len(files) == 0 {
		return os.ErrNotExist
	}
	for _, path := range files {
		if !scanFile(path, handle) {
			break
		}
	}
	return nil
}

// scanFile возвращает false, если handle попросил остановиться.
func scanFile(path string, handle func([]byte) bool) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return true
		}
		defer gr.Close()
		reader = gr
	}

	sc := bufio.NewScanner(reader)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if !handle(sc.Bytes()) {
			return false
		}
	}
	return true
}

func toUpperSet(csv string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			m[strings.ToUpper(p)] = true
		}
	}
	return m
}

func clampAtoi(s string, def, min, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
