package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/edalquez/facegate/internal/config"
	"github.com/edalquez/facegate/internal/store"
	"github.com/edalquez/facegate/internal/workflow"
)

// defaultLogLimit caps attendance listings when no limit is given.
const defaultLogLimit = 100

// LogsHandler serves the attendance queries behind the dashboard.
type LogsHandler struct {
	attendance store.AttendanceStore
	students   store.StudentStore
	workflow   *workflow.Service
	config     *config.Config
}

// NewLogsHandler creates a new logs handler.
func NewLogsHandler(attendance store.AttendanceStore, students store.StudentStore,
	wf *workflow.Service, cfg *config.Config) *LogsHandler {
	return &LogsHandler{
		attendance: attendance,
		students:   students,
		workflow:   wf,
		config:     cfg,
	}
}

// Attendance lists recent attendance records. Supports ?limit=N and
// ?today=true.
func (h *LogsHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	var (
		logs []store.AttendanceRecord
		err  error
	)
	if r.URL.Query().Get("today") == "true" {
		logs, err = h.attendance.ListToday(r.Context())
	} else {
		limit := defaultLogLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
				limit = n
			}
		}
		logs, err = h.attendance.ListLogs(r.Context(), limit)
	}
	if err != nil {
		log.Printf("failed to list attendance: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list attendance records")
		return
	}
	if logs == nil {
		logs = []store.AttendanceRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"count":  len(logs),
		"logs":   logs,
	})
}

// Stats returns the aggregate attendance counters.
func (h *LogsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.attendance.Stats(r.Context())
	if err != nil {
		log.Printf("failed to compute stats: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":                "success",
		"total_logs":            stats.TotalLogs,
		"unique_students":       stats.UniqueStudents,
		"today_logs":            stats.TodayLogs,
		"today_unique_students": stats.TodayUniqueStudents,
		"gallery_size":          h.workflow.GallerySize(),
	})
}

// Students lists the registered students.
func (h *LogsHandler) Students(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		log.Printf("failed to list students: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}
	if students == nil {
		students = []store.StudentRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"count":    len(students),
		"students": students,
	})
}

// YearLevels returns the year level options for the registration form.
func (h *LogsHandler) YearLevels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"year_levels": h.config.Assets.YearLevels,
	})
}

// Reload rebuilds the matching gallery from stored embeddings.
func (h *LogsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	n, err := h.workflow.ReloadGallery(r.Context())
	if err != nil {
		log.Printf("gallery reload failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to reload gallery")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"loaded": n,
	})
}
