package pdf

import (
	"context"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "  \n\n ", want: ""},
		{name: "page breaks become paragraphs", input: "Page one.\fPage two.\f", want: "Page one.\n\nPage two.\n"},
		{name: "blank lines collapse", input: "A\n\n\n\n\nB", want: "A\n\nB\n"},
		{name: "windows line endings", input: "A\r\nB\r\n", want: "A\nB\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(tt.input); got != tt.want {
				t.Fatalf("normalizeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePDF_RejectsNonPDF(t *testing.T) {
	if _, err := parsePDF(context.Background(), []byte("plain text")); err == nil {
		t.Fatal("parsePDF() expected error for non PDF input")
	}
}
