package digits

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestIsDigits(t *testing.T) {
	cases := map[string]bool{
		"123":   true,
		"0":     true,
		"":      true,
		"12a3":  false,
		"-1":    false,
		" 1":    false,
		"1.5":   false,
		"١٢٣":   false, // Arabic-Indic digits are not ASCII
		"00012": true,
	}
	for in, want := range cases {
		if got := IsDigits(in); got != want {
			t.Errorf("IsDigits(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRunRejectsThenAccepts(t *testing.T) {
	var out bytes.Buffer
	got, err := Run(strings.NewReader("12a3\n123\n999\n"), &out, "> ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "123" {
		t.Fatalf("Run = %q, want 123", got)
	}
	want := "> " + RejectMessage + "\n> You entered: 123\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestRunAcceptsEmptyLine(t *testing.T) {
	var out bytes.Buffer
	got, err := Run(strings.NewReader("\n"), &out, "")
	if err != nil || got != "" {
		t.Fatalf("Run = %q, %v", got, err)
	}
	if out.String() != "You entered: \n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunHandlesCRLF(t *testing.T) {
	got, err := Run(strings.NewReader("42\r\n"), io.Discard, "")
	if err != nil || got != "42" {
		t.Fatalf("Run = %q, %v", got, err)
	}
}

func TestRunEOF(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run(strings.NewReader("abc\n"), &out, ""); err != io.EOF {
		t.Fatalf("Run error = %v, want io.EOF", err)
	}
	if strings.Count(out.String(), RejectMessage) != 1 {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunAcceptsLongLine(t *testing.T) {
	long := strings.Repeat("7", 70000)
	var out bytes.Buffer
	got, err := Run(strings.NewReader("x\n"+long+"\n"), &out, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != long {
		t.Fatalf("len(Run) = %d, want %d", len(got), len(long))
	}
}

func TestRunAcceptsUnterminatedLastLine(t *testing.T) {
	var out bytes.Buffer
	got, err := Run(strings.NewReader("abc\n42"), &out, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "42" {
		t.Fatalf("Run = %q, want 42", got)
	}
}
