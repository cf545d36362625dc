package models

import "testing"

func TestOutcomeConstants(t *testing.T) {
	// Outcome values are persisted in keyword_lookups and exported as metric labels
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"reserved", OutcomeReserved, "reserved"},
		{"found", OutcomeFound, "found"},
		{"not found", OutcomeNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("outcome = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
