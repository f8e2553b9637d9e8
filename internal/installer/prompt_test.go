package installer

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"yes\n", true},
		{"y\n", true},
		{"  YES  \n", true},
		{"Y", true},
		{"no\n", false},
		{"yep\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(strings.NewReader(tt.answer), &out, "Replace lib?")
		if err != nil {
			t.Fatalf("Confirm(%q) error: %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.answer, got, tt.want)
		}
		if !strings.Contains(out.String(), "Replace lib?") || !strings.Contains(out.String(), "(yes/no):") {
			t.Errorf("prompt output = %q", out.String())
		}
	}
}

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out)

	bar(50, 100)
	bar(50, 100)
	bar(100, 100)

	got := out.String()
	if strings.Count(got, "50%") != 1 {
		t.Errorf("expected a single 50%% redraw, got %q", got)
	}
	if !strings.Contains(got, "[==============================]  100%\n") {
		t.Errorf("missing full bar in %q", got)
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out)

	bar(2048, -1)
	if !strings.Contains(out.String(), "2048 bytes") {
		t.Errorf("got %q", out.String())
	}

	// The fetcher's completion call must end the line for the next log message.
	bar(4096, 4096)
	if !strings.HasSuffix(out.String(), "100%\n") {
		t.Errorf("line not terminated: %q", out.String())
	}
}
