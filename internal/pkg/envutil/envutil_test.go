package envutil

import "testing"

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "42")
	if got := GetEnvAsInt("ENVUTIL_INT", 7, nil); got != 42 {
		t.Fatalf("set: want=42 got=%d", got)
	}
	t.Setenv("ENVUTIL_INT", "nope")
	if got := GetEnvAsInt("ENVUTIL_INT", 7, nil); got != 7 {
		t.Fatalf("invalid: want=7 got=%d", got)
	}
	if got := GetEnvAsInt("ENVUTIL_INT_MISSING", 7, nil); got != 7 {
		t.Fatalf("missing: want=7 got=%d", got)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("ENVUTIL_FLOAT", "4.0")
	if got := GetEnvAsFloat("ENVUTIL_FLOAT", 5.0, nil); got != 4.0 {
		t.Fatalf("want=4.0 got=%v", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("ENVUTIL_BOOL", "TRUE")
	if !GetEnvAsBool("ENVUTIL_BOOL", false, nil) {
		t.Fatalf("TRUE should parse as true")
	}
	t.Setenv("ENVUTIL_BOOL", "off")
	if GetEnvAsBool("ENVUTIL_BOOL", true, nil) {
		t.Fatalf("off should parse as false")
	}
	t.Setenv("ENVUTIL_BOOL", "maybe")
	if !GetEnvAsBool("ENVUTIL_BOOL", true, nil) {
		t.Fatalf("unparseable should fall back to default")
	}
}

func TestGetEnvTrimsAndDefaults(t *testing.T) {
	t.Setenv("ENVUTIL_STR", "  value  ")
	if got := GetEnv("ENVUTIL_STR", "d", nil); got != "value" {
		t.Fatalf("want=value got=%q", got)
	}
	t.Setenv("ENVUTIL_STR", "   ")
	if got := GetEnv("ENVUTIL_STR", "d", nil); got != "d" {
		t.Fatalf("blank: want=d got=%q", got)
	}
}
