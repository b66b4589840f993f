package postprocess

import (
	"context"
	"errors"
	"testing"
)

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"single spaces", "a b c", "a b c"},
		{"double space kept", "a  b", "a  b"},
		{"three spaces", "a   b", "a b"},
		{"long run", "a          b", "a b"},
		{"tabs untouched", "a\t\t\tb", "a\t\t\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CollapseSpaces(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("CollapseSpaces(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestJoinLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no newlines", "hello world", "hello world"},
		{"single newline", "hello\nworld", "hello world"},
		{"blank lines", "hello\n\n\nworld", "hello world"},
		{"windows line endings", "hello\r\n\r\nworld", "hello world"},
		{"trailing newline", "hello\n", "hello "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinLines(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("JoinLines(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeUnicode(t *testing.T) {
	decomposed := "Café"
	got, err := NormalizeUnicode(context.Background(), decomposed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Caf\u00e9" {
		t.Errorf("expected composed form, got %q", got)
	}
}

func TestCleanClipboard(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "pdf hard wraps",
			input:    "The quick brown\nfox jumps over\nthe lazy dog.",
			expected: "The quick brown fox jumps over the lazy dog.",
		},
		{
			name:     "indented code-like text",
			input:    "    first line\n        second line\n",
			expected: "first line second line",
		},
		{
			name:     "only whitespace",
			input:    " \n\n   \n",
			expected: "",
		},
		{
			name:     "chinese text",
			input:    "你好\n世界",
			expected: "你好 世界",
		},
	}

	pipeline := CleanClipboard()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pipeline.Process(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Process(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPipeline_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	p := NewPipeline(
		func(ctx context.Context, text string) (string, error) {
			calls++
			return text + "-a", nil
		},
		func(ctx context.Context, text string) (string, error) {
			return "", boom
		},
	)
	p.AddProcessor(func(ctx context.Context, text string) (string, error) {
		calls++
		return text + "-c", nil
	})

	if p.Len() != 3 {
		t.Fatalf("expected 3 processors, got %d", p.Len())
	}

	got, err := p.Process(context.Background(), "x")
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if got != "x-a" {
		t.Errorf("expected partial result 'x-a', got %q", got)
	}
	if calls != 1 {
		t.Errorf("expected processors after the failure to be skipped, got %d calls", calls)
	}
}
