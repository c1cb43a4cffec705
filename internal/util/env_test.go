package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"ON", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{" true ", false, true},
		{"maybe", true, true},
		{"maybe", false, false},
		{"", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Setenv("DOCUBRIDGE_TEST_BOOL", tt.value)
		if got := ParseBoolEnv("DOCUBRIDGE_TEST_BOOL", tt.defaultValue); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue int
		want         int
	}{
		{"42", 0, 42},
		{"-7", 0, -7},
		{" 8080 ", 0, 8080},
		{"", 99, 99},
		{"abc", 99, 99},
		{"4.5", 99, 99},
	}
	for _, tt := range tests {
		t.Setenv("DOCUBRIDGE_TEST_INT", tt.value)
		if got := ParseIntEnv("DOCUBRIDGE_TEST_INT", tt.defaultValue); got != tt.want {
			t.Errorf("ParseIntEnv(%q, %d) = %d, want %d", tt.value, tt.defaultValue, got, tt.want)
		}
	}
}
