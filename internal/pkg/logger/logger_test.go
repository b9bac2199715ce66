package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"channel_email", "creator@example.com",
		"api_key", "sk-123",
		"video_id", "abc123",
	})
	if len(out) != 6 {
		t.Fatalf("len: want=6 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("channel_email: want redacted got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("api_key: want redacted got=%v", out[3])
	}
	if out[5] != "abc123" {
		t.Fatalf("video_id: want=abc123 got=%v", out[5])
	}
}

func TestSanitizeKVsHashesOperatorIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"operator_id", "op-42"})
	s, ok := out[1].(string)
	if !ok || !strings.HasPrefix(s, "hash:") {
		t.Fatalf("operator_id: want hash:* got=%v", out[1])
	}
	if len(s) != len("hash:")+12 {
		t.Fatalf("hash length: got=%d", len(s))
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"video_id", "abc", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling key not preserved: %v", out)
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "k", "v")
	l.Sync()
}
