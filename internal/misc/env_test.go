package misc

import (
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	t.Setenv("TS_ENV_A", "value")
	if got := Getenv("TS_ENV_A", "def"); got != "value" {
		t.Fatalf("Getenv() = %q, want %q", got, "value")
	}
	if got := Getenv("TS_ENV_MISSING", "def"); got != "def" {
		t.Fatalf("Getenv() = %q, want default", got)
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name string
		val  string
		def  int
		want int
	}{
		{"unset", "", 7, 7},
		{"plain", "42", 7, 42},
		{"negative", "-3", 7, -3},
		{"spaces", "  15 ", 7, 15},
		{"garbage", "abc", 7, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.val != "" {
				t.Setenv("TS_ENV_INT", tc.val)
			}
			if got := GetInt("TS_ENV_INT", tc.def); got != tc.want {
				t.Fatalf("GetInt(%q) = %d, want %d", tc.val, got, tc.want)
			}
		})
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name string
		val  string
		def  time.Duration
		want time.Duration
	}{
		{"unset", "", 5 * time.Second, 5 * time.Second},
		{"seconds", "10", time.Second, 10 * time.Second},
		{"duration", "1500ms", time.Second, 1500 * time.Millisecond},
		{"zero", "0", time.Second, 0},
		{"negative duration", "-2s", time.Second, 0},
		{"garbage", "soon", time.Second, time.Second},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.val != "" {
				t.Setenv("TS_ENV_DUR", tc.val)
			}
			if got := GetDuration("TS_ENV_DUR", tc.def); got != tc.want {
				t.Fatalf("GetDuration(%q) = %v, want %v", tc.val, got, tc.want)
			}
		})
	}
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"1", false, true},
		{"yes", false, true},
		{"FALSE", true, false},
		{"n", true, false},
		{"maybe", false, false},
	}
	for _, tc := range tests {
		t.Run("val="+tc.val, func(t *testing.T) {
			if tc.val != "" {
				t.Setenv("TS_ENV_BOOL", tc.val)
			}
			if got := GetBool("TS_ENV_BOOL", tc.def); got != tc.want {
				t.Fatalf("GetBool(%q) = %v, want %v", tc.val, got, tc.want)
			}
		})
	}
}
