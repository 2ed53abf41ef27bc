package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"30s", 30 * time.Second},
		{"45", 45 * time.Second},
		{"7d", 7 * 24 * time.Hour},
		{"garbage", 5 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_DURATION", tc.raw)
		if got := Duration("ENVUTIL_TEST_DURATION", 5*time.Second); got != tc.want {
			t.Fatalf("Duration(%q): expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestList(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_LIST", " a, ,b ,c")
	got := List("ENVUTIL_TEST_LIST", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("List: unexpected result: %#v", got)
	}
	t.Setenv("ENVUTIL_TEST_LIST", " , ")
	if got := List("ENVUTIL_TEST_LIST", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("List (blank): expected default, got %#v", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "yes")
	if !Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatalf("Bool (invalid): expected default false")
	}
}
