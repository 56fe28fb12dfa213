package answer

import (
	"strings"
	"testing"

	"github.com/ragforge-labs/ragforge/internal/store/postgres"
)

func TestBuildPrompt_NoHits(t *testing.T) {
	got := buildPrompt("what is the refund policy?", nil)
	if !strings.Contains(got, "no approved content matched") {
		t.Errorf("expected empty-context marker, got %q", got)
	}
	if !strings.Contains(got, "Question: what is the refund policy?") {
		t.Errorf("expected question at the end, got %q", got)
	}
}

func TestBuildPrompt_NumbersHits(t *testing.T) {
	hits := []postgres.ChunkSearchRow{
		{Content: "refunds within 30 days", CycleN: 2},
		{Content: "contact support first", CycleN: 1},
	}
	got := buildPrompt("refunds?", hits)

	if !strings.Contains(got, "[1] (cycle 2)\nrefunds within 30 days") {
		t.Errorf("expected first hit labelled [1], got %q", got)
	}
	if !strings.Contains(got, "[2] (cycle 1)\ncontact support first") {
		t.Errorf("expected second hit labelled [2], got %q", got)
	}
	if strings.Index(got, "[1]") > strings.Index(got, "[2]") {
		t.Error("expected hits in retrieval order")
	}
}
