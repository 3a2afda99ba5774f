package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestScaleOrder(t *testing.T) {
	names := []string{"emergency", "alert", "critical", "error", "warning", "notice", "info", "debug"}
	levels := Levels()
	if len(levels) != len(names) {
		t.Fatal("Scale should have", len(names), "levels, got", len(levels))
	}
	for i, name := range names {
		if levels[i].String() != name {
			t.Errorf("Rank %d: got %s, want %s", i, levels[i], name)
		}
		l, err := ParseLevel(name)
		if err != nil || int(l) != i {
			t.Errorf("ParseLevel(%s) = %d, %v", name, l, err)
		}
	}
}

func TestParseLevelRejects(t *testing.T) {
	for _, s := range []string{"", "bogus", "Error", "WARNING", "warn", "debug "} {
		_, err := ParseLevel(s)
		var ile *InvalidLevelError
		if !errors.As(err, &ile) {
			t.Errorf("ParseLevel(%q) should fail, got %v", s, err)
			continue
		}
		if ile.Name != s {
			t.Errorf("Error carries %q, want %q", ile.Name, s)
		}
		if !errors.Is(err, ErrInvalidLevel) {
			t.Error("Should match ErrInvalidLevel", err)
		}
	}
}

func TestAllows(t *testing.T) {
	tests := []struct {
		threshold, level Level
		want             bool
	}{
		{LevelWarning, LevelError, true},
		{LevelWarning, LevelWarning, true},
		{LevelWarning, LevelDebug, false},
		{LevelEmergency, LevelAlert, false},
		{LevelDebug, LevelEmergency, true},
	}
	for _, tc := range tests {
		if got := tc.threshold.Allows(tc.level); got != tc.want {
			t.Errorf("%s.Allows(%s) = %v", tc.threshold, tc.level, got)
		}
	}
}

func TestLevelJSON(t *testing.T) {
	b, err := json.Marshal(LevelNotice)
	if err != nil || string(b) != `"notice"` {
		t.Error("Marshal notice:", string(b), err)
	}

	var l Level
	if err := json.Unmarshal([]byte(`"critical"`), &l); err != nil || l != LevelCritical {
		t.Error("Unmarshal critical:", l, err)
	}
	if err := json.Unmarshal([]byte(`"bogus"`), &l); err == nil {
		t.Error("Unmarshal bogus should fail")
	}
	if _, err := json.Marshal(Level(-1)); err == nil {
		t.Error("Marshal of an out of range level should fail")
	}
	if Level(99).String() != "level(99)" {
		t.Error("Unexpected out of range String", Level(99).String())
	}
}

func TestNewLogRecord(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 600, time.UTC)
	r := NewLogRecord("x", at, LevelInfo, "user {name} logged in", nil)
	if r.Context == nil || len(r.Context) != 0 {
		t.Error("Nil context should become empty", r.Context)
	}
	if r.Timestamp.Nanosecond() != 0 {
		t.Error("Timestamp not truncated", r.Timestamp)
	}
	if r.Message != "user {name} logged in" {
		t.Error("Message should not be interpolated", r.Message)
	}
	if _, ok := r.Get("name"); ok {
		t.Error("Get on empty context found a value")
	}
}
