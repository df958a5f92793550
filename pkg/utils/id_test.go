package utils

import (
	"strings"
	"testing"
)

func TestGenerateRunID(t *testing.T) {
	a := GenerateRunID()
	b := GenerateRunID()
	if !strings.HasPrefix(a, "run-") {
		t.Fatalf("expected run- prefix, got %s", a)
	}
	if a == b {
		t.Fatalf("expected unique run ids, got %s twice", a)
	}
}
