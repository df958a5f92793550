package models

import (
	"testing"
)

func sampleComponents() []*OptionalComponent {
	return []*OptionalComponent{
		NewOptionalComponent(1, "a", 0.15, 0.12),
		NewOptionalComponent(2, "b", 0.12, 0.08),
		NewOptionalComponent(3, "c", 0.10, 0.10),
	}
}

func tags(components []*OptionalComponent) string {
	out := ""
	for _, c := range components {
		out += c.Tag
	}
	return out
}

func TestSortByUtilization(t *testing.T) {
	list := sampleComponents()
	SortComponents(list, CompareByUtilization)
	if got := tags(list); got != "cba" {
		t.Fatalf("expected order cba, got %s", got)
	}
}

func TestSortByPrice(t *testing.T) {
	list := sampleComponents()
	SortComponents(list, CompareByPrice)
	if got := tags(list); got != "bca" {
		t.Fatalf("expected order bca, got %s", got)
	}
}

func TestSortByUtilizationPriceRatio(t *testing.T) {
	list := sampleComponents()
	// ratios: a=1.25, b=1.5, c=1.0 -> descending b, a, c
	SortComponents(list, CompareByUtilizationPriceRatio)
	if got := tags(list); got != "bac" {
		t.Fatalf("expected order bac, got %s", got)
	}
}

func TestZeroPriceRanksLast(t *testing.T) {
	list := []*OptionalComponent{
		NewOptionalComponent(1, "free", 0.30, 0),
		NewOptionalComponent(2, "cheap", 0.01, 1.0),
		NewOptionalComponent(3, "free2", 0.20, 0),
		NewOptionalComponent(4, "dear", 0.20, 0.1),
	}
	SortComponents(list, CompareByUtilizationPriceRatio)
	want := []string{"dear", "cheap", "free", "free2"}
	for i, tag := range want {
		if list[i].Tag != tag {
			t.Fatalf("position %d: expected %s, got %s", i, tag, list[i].Tag)
		}
	}
}

func TestSortIsStable(t *testing.T) {
	list := []*OptionalComponent{
		NewOptionalComponent(1, "x", 0.1, 0.1),
		NewOptionalComponent(2, "y", 0.1, 0.1),
		NewOptionalComponent(3, "z", 0.1, 0.1),
	}
	SortComponents(list, CompareByUtilization)
	if got := tags(list); got != "xyz" {
		t.Fatalf("equal elements reordered: %s", got)
	}
}

func TestCloneComponentsIsDeep(t *testing.T) {
	list := sampleComponents()
	cp := CloneComponents(list)
	cp[0].Enabled = false
	if !list[0].Enabled {
		t.Fatal("mutating the clone changed the original")
	}
}

func TestBuiltinComponentsScale(t *testing.T) {
	list := BuiltinComponents(0.5)
	if len(list) != 5 {
		t.Fatalf("expected 5 components, got %d", len(list))
	}
	sum := 0.0
	for _, c := range list {
		if !c.Enabled {
			t.Errorf("component %d should start enabled", c.ID)
		}
		sum += c.Utilization
	}
	if sum < 0.4999 || sum > 0.5001 {
		t.Errorf("expected shares to add up to 0.5, got %f", sum)
	}
}

func TestRunStatusIsTerminal(t *testing.T) {
	if RunStatusRunning.IsTerminal() {
		t.Error("running should not be terminal")
	}
	for _, s := range []RunStatus{RunStatusCompleted, RunStatusFailed, RunStatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
