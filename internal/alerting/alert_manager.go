package alerting

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"logvault/pkg/models"
)

// ErrStopped is returned by Handle once the manager has been stopped.
var ErrStopped = errors.New("alert manager stopped")

// AlertRule defines conditions that trigger an alert
type AlertRule struct {
	Name      string
	Level     models.Level  // Records at least this severe are counted
	Threshold int           // Number of occurrences
	Window    time.Duration // Time window to check
	Pattern   string        // Optional: substring to match in message
}

// Alert represents a triggered alert
type Alert struct {
	RuleName  string
	Message   string
	Count     int
	Timestamp time.Time
}

// AlertManager watches accepted log records and raises alerts when a rule's threshold
// is reached inside its window. It is registered with the logger as a handler.
type AlertManager struct {
	rules         []AlertRule
	alertChannel  chan Alert
	recent        []seen
	mu            sync.Mutex
	stopped       bool
	alertCallback func(Alert)
	now           func() time.Time
}

// seen stores minimal info for alert checking
type seen struct {
	at      time.Time
	level   models.Level
	message string
}

// NewAlertManager creates a new alert manager
func NewAlertManager(callback func(Alert)) *AlertManager {
	return &AlertManager{
		rules:         make([]AlertRule, 0),
		alertChannel:  make(chan Alert, 100),
		recent:        make([]seen, 0, 1000),
		alertCallback: callback,
		now:           time.Now,
	}
}

// AddRule adds a new alert rule
func (am *AlertManager) AddRule(rule AlertRule) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.rules = append(am.rules, rule)
}

// Start begins delivering alerts to the callback
func (am *AlertManager) Start() {
	go am.processAlerts()
}

// Alerts exposes the alert channel for callers that did not supply a callback.
func (am *AlertManager) Alerts() <-chan Alert {
	return am.alertChannel
}

// Handle checks a record against all rules.
func (am *AlertManager) Handle(record models.LogRecord) error {
	am.mu.Lock()
	defer am.mu.Unlock()

	if am.stopped {
		return ErrStopped
	}

	am.recent = append(am.recent, seen{
		at:      record.Timestamp,
		level:   record.Level,
		message: record.Message,
	})

	now := am.now()
	am.recent = pruneBefore(am.recent, now.Add(-am.maxWindow()))

	for _, rule := range am.rules {
		count := am.countMatches(rule, now)
		if count < rule.Threshold {
			continue
		}

		alert := Alert{
			RuleName:  rule.Name,
			Message:   fmt.Sprintf("%s: %d %s or worse records in last %v", rule.Name, count, rule.Level, rule.Window),
			Count:     count,
			Timestamp: now,
		}

		// Never block the logger; drop when nobody keeps up
		select {
		case am.alertChannel <- alert:
		default:
		}
	}
	return nil
}

// countMatches counts the recent records satisfying rule
func (am *AlertManager) countMatches(rule AlertRule, now time.Time) int {
	windowStart := now.Add(-rule.Window)

	count := 0
	for _, s := range am.recent {
		if !s.at.After(windowStart) {
			continue
		}
		if rule.Level.Allows(s.level) && strings.Contains(s.message, rule.Pattern) {
			count++
		}
	}
	return count
}

// processAlerts handles triggered alerts
func (am *AlertManager) processAlerts() {
	for alert := range am.alertChannel {
		if am.alertCallback != nil {
			am.alertCallback(alert)
		}
	}
}

// maxWindow returns the largest window among all rules
func (am *AlertManager) maxWindow() time.Duration {
	var max time.Duration
	for _, rule := range am.rules {
		if rule.Window > max {
			max = rule.Window
		}
	}
	return max
}

// pruneBefore drops entries at or before cutoff, keeping order
func pruneBefore(entries []seen, cutoff time.Time) []seen {
	result := entries[:0]
	for _, s := range entries {
		if s.at.After(cutoff) {
			result = append(result, s)
		}
	}
	return result
}

// Stop closes the alert channel. Later calls to Handle fail with ErrStopped.
func (am *AlertManager) Stop() {
	am.mu.Lock()
	defer am.mu.Unlock()

	if am.stopped {
		return
	}
	am.stopped = true
	close(am.alertChannel)
}
