package search

import (
	"strings"
	"testing"
)

func TestEditFilterRejectsOverLongText(t *testing.T) {
	f := NewEditFilter(0)

	if !f.Allow(strings.Repeat("a", 500)) {
		t.Fatalf("500 characters must be allowed")
	}
	if f.Allow(strings.Repeat("a", 501)) {
		t.Fatalf("501 characters must be rejected")
	}
	// Whitespace counts: the guard looks at the untrimmed text.
	if f.Allow(strings.Repeat(" ", 501)) {
		t.Fatalf("501 spaces must be rejected")
	}
	// Characters, not bytes.
	if !f.Allow(strings.Repeat("é", 500)) {
		t.Fatalf("500 multi-byte characters must be allowed")
	}
}

func TestEditFilterApplyKeepsPriorText(t *testing.T) {
	f := NewEditFilter(5)
	if got := f.Apply("abc", "abcdef"); got != "abc" {
		t.Fatalf("Apply = %q, want prior text", got)
	}
	if got := f.Apply("abc", "abcd"); got != "abcd" {
		t.Fatalf("Apply = %q, want proposed text", got)
	}
}

func TestEditFilterAllowEdit(t *testing.T) {
	f := EditFilter{MaxLen: 5}

	if !f.AllowEdit("abcd", 4, 0, "e") {
		t.Fatalf("append to 5 must be allowed")
	}
	if f.AllowEdit("abcde", 5, 0, "f") {
		t.Fatalf("append to 6 must be rejected")
	}
	if !f.AllowEdit("abcde", 1, 2, "xy") {
		t.Fatalf("same-length replacement must be allowed")
	}
	if !f.AllowEdit("abcde", 0, 5, "") {
		t.Fatalf("clearing must be allowed")
	}
	if f.AllowEdit("abc", 2, 5, "") {
		t.Fatalf("out-of-range edit must be rejected")
	}
	if f.AllowEdit("abc", -1, 0, "") {
		t.Fatalf("negative start must be rejected")
	}
}
