package rag

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestObjectNameFor(t *testing.T) {
	ragID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	cycleID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	tests := []struct {
		name     string
		filename string
		wantBase string
	}{
		{"plain", "notes.md", "notes.md"},
		{"strips directories", "../../etc/passwd", "passwd"},
		{"strips windows path", `C:\docs\report.txt`, "report.txt"},
		{"empty falls back", "", "document"},
		{"dot falls back", ".", "document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := objectNameFor(ragID, cycleID, tt.filename)
			want := "rag_" + ragID.String() + "/cycle_" + cycleID.String() + "/" + tt.wantBase
			if got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
			if strings.Contains(got[len("rag_")+36+len("/cycle_")+36+1:], "/") {
				t.Errorf("object base name contains a path separator: %q", got)
			}
		})
	}
}
