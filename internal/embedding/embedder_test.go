package embedding

import "testing"

func TestSplitBatches(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []batchRange
	}{
		{"empty", 0, 10, nil},
		{"one partial", 3, 10, []batchRange{{0, 3}}},
		{"exact multiple", 20, 10, []batchRange{{0, 10}, {10, 20}}},
		{"with remainder", 25, 10, []batchRange{{0, 10}, {10, 20}, {20, 25}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitBatches(tt.n, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d batches, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("batch %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}
