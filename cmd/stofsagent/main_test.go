package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDatesFromFlags(t *testing.T) {
	dates, err := datesFromFlags("20251122", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 1 || dates[0].Day() != 22 {
		t.Errorf("dates = %v", dates)
	}

	dates, err = datesFromFlags("", "20251122", "20251124")
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 3 {
		t.Fatalf("got %d dates, want 3", len(dates))
	}
	if !dates[2].Equal(time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last date = %v", dates[2])
	}

	if _, err := datesFromFlags("", "20251124", "20251122"); err == nil {
		t.Error("reversed range accepted")
	}
	if _, err := datesFromFlags("2025-11-22", "", ""); err == nil {
		t.Error("wrong date layout accepted")
	}
}

func TestCycleDir(t *testing.T) {
	day := time.Date(2025, 11, 22, 0, 0, 0, 0, time.UTC)
	if got := cycleDir("out", day, "06"); got != filepath.Join("out", "20251122", "t06z") {
		t.Errorf("cycleDir = %q", got)
	}
}
