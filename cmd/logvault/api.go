package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"logvault/internal/alerting"
	"logvault/internal/console"
	"logvault/internal/ingestion"
	"logvault/internal/logger"
	"logvault/internal/storage"
	"logvault/pkg/models"
)

const defaultRecent = 100

type application struct {
	config   config
	stdout   *console.Writer
	vault    *logger.Logger // Records received over HTTP
	ops      *logger.Logger // The service's own messages
	store    *storage.MemoryStore
	alerts   *alerting.AlertManager
	ingestor *ingestion.Ingestor
}

// newApplication wires the vault logger to its handlers: console (unless quiet),
// store, then alert manager. Operational messages go to out.
func newApplication(cfg config, out io.Writer) (*application, error) {
	vault, err := logger.New(cfg.level)
	if err != nil {
		return nil, fmt.Errorf("--level: %w", err)
	}
	ops, err := logger.New("info")
	if err != nil {
		return nil, err
	}
	// One writer for both loggers so their lines never interleave
	stdout := console.NewWriter(out)
	ops.AddHandler(stdout)

	app := &application{
		config: cfg,
		stdout: stdout,
		vault:  vault,
		ops:    ops,
		store:  storage.NewMemoryStore(cfg.maxRecords),
	}
	app.alerts = alerting.NewAlertManager(app.handleAlert)
	app.alerts.AddRule(alerting.AlertRule{
		Name:      "High Error Rate",
		Level:     models.LevelError,
		Threshold: 10,
		Window:    time.Minute,
	})
	app.alerts.AddRule(alerting.AlertRule{
		Name:      "Critical Errors",
		Level:     models.LevelCritical,
		Threshold: 3,
		Window:    30 * time.Second,
	})

	if !cfg.quiet {
		vault.AddHandler(stdout)
	}
	vault.AddHandler(app.store)
	vault.AddHandler(app.alerts)

	app.ingestor = ingestion.NewIngestor(vault)
	return app, nil
}

// report logs an operational message, falling back to stderr if that fails.
func (app *application) report(level models.Level, message string, ctx models.Context) {
	if err := app.ops.LogLevel(level, message, ctx); err != nil {
		fmt.Fprintln(os.Stderr, programName+":", message, err)
	}
}

func (app *application) handleAlert(alert alerting.Alert) {
	app.report(models.LevelWarning, alert.Message, models.Context{
		"rule":  alert.RuleName,
		"count": alert.Count,
	})
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.New(app.stdout, "", log.LstdFlags),
		NoColor: true,
	}))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/ingest", app.handleIngest)
	r.Route("/logs", func(r chi.Router) {
		r.Get("/", app.handleGetLogs)
		r.Get("/recent", app.handleGetRecent)
	})
	r.Get("/stats", app.handleStats)
	r.Get("/level", app.handleGetLevel)
	r.Put("/level", app.handleSetLevel)

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	app.report(models.LevelInfo, "server started", models.Context{
		"addr":  app.config.addr,
		"level": app.vault.Level().String(),
	})
	return srv.ListenAndServe()
}

// handleIngest logs one entry through the vault logger
func (app *application) handleIngest(w http.ResponseWriter, r *http.Request) {
	var entry models.LogEntry
	if err := readJSON(w, r, &entry); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	outcome, err := app.ingestor.Ingest(entry)
	switch outcome {
	case ingestion.Processed:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": outcome.String()})
	case ingestion.Suppressed:
		w.WriteHeader(http.StatusNoContent)
	case ingestion.Rejected:
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		app.report(models.LevelError, "handler failed", models.Context{"error": err.Error()})
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleGetLogs queries by exact level, by minimum level or, by default, the last hour
func (app *application) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	var records []models.LogRecord

	q := r.URL.Query()
	switch {
	case q.Get("level") != "":
		level, err := models.ParseLevel(q.Get("level"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		records = app.store.GetByLevel(level)
	case q.Get("min") != "":
		level, err := models.ParseLevel(q.Get("min"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		records = app.store.GetAtOrAbove(level)
	default:
		end := time.Now()
		records = app.store.GetByTimeRange(end.Add(-time.Hour), end)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(records),
		"logs":  records,
	})
}

func (app *application) handleGetRecent(w http.ResponseWriter, r *http.Request) {
	n := defaultRecent
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeJSONError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = v
	}

	records := app.store.GetRecent(n)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(records),
		"logs":  records,
	})
}

func (app *application) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := app.ingestor.GetStats()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_processed":  stats.TotalProcessed,
		"total_suppressed": stats.TotalSuppressed,
		"total_rejected":   stats.TotalRejected,
		"total_failed":     stats.TotalFailed,
		"uptime_seconds":   int(time.Since(stats.StartTime).Seconds()),
		"logs_in_storage":  app.store.Count(),
		"level":            app.vault.Level().String(),
	})
}

type levelPayload struct {
	Level string `json:"level"`
}

func (app *application) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, levelPayload{Level: app.vault.Level().String()})
}

func (app *application) handleSetLevel(w http.ResponseWriter, r *http.Request) {
	var p levelPayload
	if err := readJSON(w, r, &p); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := app.vault.Configure(p.Level); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	app.report(models.LevelNotice, "threshold changed", models.Context{"level": p.Level})
	writeJSON(w, http.StatusOK, p)
}
