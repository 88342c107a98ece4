package utils

import "testing"

func TestGetEnvFallsBack(t *testing.T) {
	t.Setenv("WIZARDGO_TEST_EMPTY", "")
	if got := GetEnv("WIZARDGO_TEST_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for empty value, got %q", got)
	}

	t.Setenv("WIZARDGO_TEST_SET", "value")
	if got := GetEnv("WIZARDGO_TEST_SET", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestGetEnvNumbers(t *testing.T) {
	t.Setenv("WIZARDGO_TEST_FLOAT", "12.5")
	t.Setenv("WIZARDGO_TEST_INT", "not-a-number")
	t.Setenv("WIZARDGO_TEST_BOOL", "true")

	if got := GetEnvFloat("WIZARDGO_TEST_FLOAT", 1); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := GetEnvInt("WIZARDGO_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default 7 for unparsable int, got %d", got)
	}
	if got := GetEnvBool("WIZARDGO_TEST_BOOL", false); !got {
		t.Fatalf("expected true")
	}
}
