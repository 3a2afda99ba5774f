package ingestion

import (
	"sync/atomic"
	"time"

	"logvault/internal/logger"
	"logvault/pkg/models"
)

// Outcome classifies a single Ingest call.
type Outcome int

const (
	Processed Outcome = iota
	Suppressed
	Rejected
	Failed
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Processed:
		return "processed"
	case Suppressed:
		return "suppressed"
	case Rejected:
		return "rejected"
	}
	return "failed"
}

// Ingestor feeds externally received entries into a Logger and keeps counters
type Ingestor struct {
	logger *logger.Logger
	stats  *Stats
}

// Stats tracks ingestion outcomes
type Stats struct {
	TotalProcessed  uint64
	TotalSuppressed uint64
	TotalRejected   uint64
	TotalFailed     uint64
	StartTime       time.Time
}

// NewIngestor creates a new ingestor in front of l
func NewIngestor(l *logger.Logger) *Ingestor {
	return &Ingestor{
		logger: l,
		stats: &Stats{
			StartTime: time.Now(),
		},
	}
}

// Ingest logs entry synchronously and reports what happened to it. The error is the
// one returned by the logger, if any.
func (ing *Ingestor) Ingest(entry models.LogEntry) (Outcome, error) {
	level, err := models.ParseLevel(entry.Level)
	if err != nil {
		atomic.AddUint64(&ing.stats.TotalRejected, 1)
		return Rejected, err
	}

	accepted, err := ing.logger.Dispatch(level, entry.Message, entry.Context)
	switch {
	case err != nil && !accepted:
		atomic.AddUint64(&ing.stats.TotalRejected, 1)
		return Rejected, err
	case err != nil:
		atomic.AddUint64(&ing.stats.TotalFailed, 1)
		return Failed, err
	case !accepted:
		atomic.AddUint64(&ing.stats.TotalSuppressed, 1)
		return Suppressed, nil
	}

	atomic.AddUint64(&ing.stats.TotalProcessed, 1)
	return Processed, nil
}

// GetStats returns current ingestion statistics
func (ing *Ingestor) GetStats() Stats {
	return Stats{
		TotalProcessed:  atomic.LoadUint64(&ing.stats.TotalProcessed),
		TotalSuppressed: atomic.LoadUint64(&ing.stats.TotalSuppressed),
		TotalRejected:   atomic.LoadUint64(&ing.stats.TotalRejected),
		TotalFailed:     atomic.LoadUint64(&ing.stats.TotalFailed),
		StartTime:       ing.stats.StartTime,
	}
}
