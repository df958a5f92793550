package simd

import (
	"errors"
	"testing"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

func TestRunStoreCreateAndGet(t *testing.T) {
	store := NewRunStore()

	rec, err := store.Create("run-1", &RunInput{ScenarioYAML: "x", Policy: "partition_utilization"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.Run.Status != models.RunStatusPending {
		t.Errorf("Expected pending, got %s", rec.Run.Status)
	}
	if rec.Run.Policy != "partition_utilization" {
		t.Errorf("Expected requested policy on run, got %q", rec.Run.Policy)
	}

	if _, err := store.Create("run-1", &RunInput{}); !errors.Is(err, ErrRunExists) {
		t.Fatalf("Expected ErrRunExists, got %v", err)
	}

	got, ok := store.Get("run-1")
	if !ok {
		t.Fatal("Expected run to exist")
	}
	if got.Run.ID != "run-1" || got.Input.ScenarioYAML != "x" {
		t.Errorf("Unexpected record %+v", got.Run)
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("Expected missing run to be absent")
	}
}

func TestRunStoreGeneratesID(t *testing.T) {
	store := NewRunStore()
	a, err := store.Create("", &RunInput{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := store.Create("", &RunInput{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.Run.ID == "" || a.Run.ID == b.Run.ID {
		t.Errorf("Expected distinct generated ids, got %q and %q", a.Run.ID, b.Run.ID)
	}
}

func TestRunStoreReturnsCopies(t *testing.T) {
	store := NewRunStore()
	rec, _ := store.Create("run-1", &RunInput{})
	rec.Run.Status = models.RunStatusCompleted

	got, _ := store.Get("run-1")
	if got.Run.Status != models.RunStatusPending {
		t.Errorf("Mutating a returned record changed the store: %s", got.Run.Status)
	}
}

func TestRunStoreStatusTransitions(t *testing.T) {
	store := NewRunStore()
	store.Create("run-1", &RunInput{})

	running, err := store.SetStatus("run-1", models.RunStatusRunning, "")
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if running.Run.StartedAt.IsZero() {
		t.Error("Expected StartedAt to be set")
	}

	failed, err := store.SetStatus("run-1", models.RunStatusFailed, "boom")
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if failed.Run.Error != "boom" || failed.Run.EndedAt.IsZero() {
		t.Errorf("Expected error and EndedAt, got %+v", failed.Run)
	}

	after, _ := store.SetStatus("run-1", models.RunStatusCompleted, "")
	if after.Run.Status != models.RunStatusFailed {
		t.Errorf("Terminal status changed to %s", after.Run.Status)
	}

	if _, err := store.SetStatus("missing", models.RunStatusRunning, ""); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestRunStoreList(t *testing.T) {
	store := NewRunStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		store.Create(id, &RunInput{})
	}
	store.SetStatus("b", models.RunStatusRunning, "")
	store.SetStatus("d", models.RunStatusRunning, "")

	all := store.List(10, 0, "")
	if len(all) != 4 {
		t.Fatalf("Expected 4 runs, got %d", len(all))
	}

	page := store.List(2, 1, "")
	if len(page) != 2 {
		t.Fatalf("Expected page of 2, got %d", len(page))
	}
	if page[0].Run.ID != all[1].Run.ID || page[1].Run.ID != all[2].Run.ID {
		t.Errorf("Page does not match ordering: %s,%s", page[0].Run.ID, page[1].Run.ID)
	}

	running := store.List(10, 0, models.RunStatusRunning)
	if len(running) != 2 {
		t.Fatalf("Expected 2 running runs, got %d", len(running))
	}
	for _, rec := range running {
		if rec.Run.Status != models.RunStatusRunning {
			t.Errorf("Unexpected status %s in filtered list", rec.Run.Status)
		}
	}

	if out := store.List(10, 10, ""); len(out) != 0 {
		t.Errorf("Expected empty list past the end, got %d", len(out))
	}
}

func TestRunStoreReportAndCollector(t *testing.T) {
	store := NewRunStore()
	store.Create("run-1", &RunInput{})

	if _, ok := store.GetCollector("run-1"); ok {
		t.Error("Expected no collector before the run starts")
	}
	if err := store.SetReport("run-1", &models.Report{Policy: "nearest_utilization"}); err != nil {
		t.Fatalf("SetReport failed: %v", err)
	}
	if err := store.SetPolicy("run-1", "nearest_utilization"); err != nil {
		t.Fatalf("SetPolicy failed: %v", err)
	}
	got, _ := store.Get("run-1")
	if got.Report == nil || got.Run.Policy != "nearest_utilization" {
		t.Errorf("Expected report and policy, got %+v", got.Run)
	}

	if err := store.SetReport("missing", nil); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}
