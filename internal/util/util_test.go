package util

import (
	"math"
	"testing"
)

func TestRollingHash(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int32
	}{
		{"empty string", "", 0},
		{"single char", "a", 97},
		{"two chars", "ab", 3105},
		{"wraps negative", "DUST-SIM:Operator:0", -1647547880},
		{"team key", "DUST-SIM:Operator", 1777054562},
		{"surrogate pair", "\U0001F600", 1772899},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RollingHash(tt.input)
			if result != tt.expected {
				t.Errorf("RollingHash(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBucket(t *testing.T) {
	tests := []struct {
		name     string
		hash     int32
		n        int
		expected int
	}{
		{"positive", 3105, 6, 3},
		{"negative", -1647547880, 8, 0},
		{"min int32", math.MinInt32, 3, 2},
		{"zero", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Bucket(tt.hash, tt.n)
			if result != tt.expected {
				t.Errorf("Bucket(%d, %d) = %d, want %d", tt.hash, tt.n, result, tt.expected)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName(" Dust Simulation: 2 "); got != "Dust_Simulation__2" {
		t.Errorf("SanitizeName = %q", got)
	}
}
