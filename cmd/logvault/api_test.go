package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"logvault/pkg/models"
)

func newTestApp(t *testing.T, level string, quiet bool) (*application, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	app, err := newApplication(config{level: level, maxRecords: 100, quiet: quiet}, &out)
	if err != nil {
		t.Fatal("newApplication failed", err)
	}
	return app, &out
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIngestStatusCodes(t *testing.T) {
	app, out := newTestApp(t, "warning", false)
	h := app.mount()

	tests := []struct {
		body   string
		status int
	}{
		{`{"level":"error","message":"disk full","context":{"path":"/var"}}`, http.StatusAccepted},
		{`{"level":"debug","message":"tracing"}`, http.StatusNoContent},
		{`{"level":"bogus","message":"x"}`, http.StatusBadRequest},
		{`{"level":"error","unknown":1}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		rec := do(t, h, http.MethodPost, "/ingest", tc.body)
		if rec.Code != tc.status {
			t.Errorf("%s: got %d, want %d (%s)", tc.body, rec.Code, tc.status, rec.Body.String())
		}
	}

	if app.store.Count() != 1 {
		t.Error("Expected one stored record, got", app.store.Count())
	}
	if !strings.Contains(out.String(), "[ERROR] disk full path=/var") {
		t.Error("Console handler did not echo the record:", out.String())
	}
	if strings.Contains(out.String(), "tracing") {
		t.Error("Suppressed record was echoed")
	}
}

func TestIngestHandlerFailure(t *testing.T) {
	app, out := newTestApp(t, "debug", true)
	h := app.mount()
	app.alerts.Stop() // Alert manager now fails every record

	rec := do(t, h, http.MethodPost, "/ingest", `{"level":"info","message":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Error("Expected 500, got", rec.Code)
	}
	if app.store.Count() != 1 {
		t.Error("Store registered before the failing handler should have the record")
	}
	if !strings.Contains(out.String(), "handler failed") {
		t.Error("Failure not reported:", out.String())
	}
}

func TestQueries(t *testing.T) {
	app, _ := newTestApp(t, "debug", true)
	h := app.mount()
	for _, l := range []string{"info", "error", "critical", "info"} {
		do(t, h, http.MethodPost, "/ingest", `{"level":"`+l+`","message":"m"}`)
	}

	count := func(path string) int {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		var resp struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		return resp.Count
	}

	if c := count("/logs?level=info"); c != 2 {
		t.Error("level=info returned", c)
	}
	if c := count("/logs?min=error"); c != 2 {
		t.Error("min=error returned", c)
	}
	if c := count("/logs"); c != 4 {
		t.Error("last hour returned", c)
	}
	if c := count("/logs/recent?n=3"); c != 3 {
		t.Error("recent n=3 returned", c)
	}
	if rec := do(t, h, http.MethodGet, "/logs?level=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Error("Bad level query should be 400, got", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/logs/recent?n=-1", ""); rec.Code != http.StatusBadRequest {
		t.Error("Negative n should be 400, got", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/stats", "")
	var stats map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats["total_processed"] != float64(4) || stats["logs_in_storage"] != float64(4) {
		t.Error("Wrong stats", stats)
	}
}

func TestLevelEndpoints(t *testing.T) {
	app, _ := newTestApp(t, "", true)
	h := app.mount()

	rec := do(t, h, http.MethodGet, "/level", "")
	if !strings.Contains(rec.Body.String(), `"debug"`) {
		t.Error("Default level should be debug:", rec.Body.String())
	}

	if rec := do(t, h, http.MethodPut, "/level", `{"level":"critical"}`); rec.Code != http.StatusOK {
		t.Error("PUT critical failed", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/level", `{"level":"bogus"}`); rec.Code != http.StatusBadRequest {
		t.Error("PUT bogus should be 400, got", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/level", "")
	if !strings.Contains(rec.Body.String(), `"critical"`) {
		t.Error("Level should still be critical:", rec.Body.String())
	}

	if rec := do(t, h, http.MethodPost, "/ingest", `{"level":"error","message":"m"}`); rec.Code != http.StatusNoContent {
		t.Error("error below critical should be suppressed, got", rec.Code)
	}
}

func TestNewApplicationRejectsLevel(t *testing.T) {
	if _, err := newApplication(config{level: "loud", maxRecords: 1}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for invalid --level")
	}
}

func TestRequestLogging(t *testing.T) {
	app, out := newTestApp(t, "", true)
	do(t, app.mount(), http.MethodGet, "/level", "")

	if !strings.Contains(out.String(), `"GET http://example.com/level HTTP/1.1"`) {
		t.Error("Request not logged:", out.String())
	}
}

// overlapWriter counts Write calls that start while another is still running.
type overlapWriter struct {
	active   int32
	overlaps int32
}

func (w *overlapWriter) Write(p []byte) (int, error) {
	if atomic.AddInt32(&w.active, 1) > 1 {
		atomic.AddInt32(&w.overlaps, 1)
	}
	for i := 0; i < 1000; i++ { // Widen the window
		_ = p[i%len(p)]
	}
	atomic.AddInt32(&w.active, -1)
	return len(p), nil
}

func TestSharedConsoleWriter(t *testing.T) {
	var w overlapWriter
	app, err := newApplication(config{level: "debug", maxRecords: 1000}, &w)
	if err != nil {
		t.Fatal(err)
	}
	h := app.mount()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				app.report(models.LevelInfo, "operational", nil)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{"level":"info","message":"m"}`))
				h.ServeHTTP(httptest.NewRecorder(), req)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&w.overlaps); n != 0 {
		t.Error("Console output interleaved", n, "times")
	}
}
