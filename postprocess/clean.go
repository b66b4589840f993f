package postprocess

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	spaceRunRe   = regexp.MustCompile(` {3,}`)
	newlineRunRe = regexp.MustCompile(`(?:\r?\n|\r)+`)
)

// NormalizeUnicode converts text to NFC so composed and decomposed
// characters copied from different applications translate the same
func NormalizeUnicode(_ context.Context, text string) (string, error) {
	return norm.NFC.String(text), nil
}

// CollapseSpaces replaces runs of three or more spaces with a single space.
// Double spaces are kept.
func CollapseSpaces(_ context.Context, text string) (string, error) {
	return spaceRunRe.ReplaceAllString(text, " "), nil
}

// JoinLines replaces each run of line breaks with a single space, undoing
// the hard wraps of text copied from PDFs and terminals
func JoinLines(_ context.Context, text string) (string, error) {
	return newlineRunRe.ReplaceAllString(text, " "), nil
}

// TrimSpace removes leading and trailing whitespace
func TrimSpace(_ context.Context, text string) (string, error) {
	return strings.TrimSpace(text), nil
}

// CleanClipboard returns the pipeline applied to clipboard text before it
// is sent for translation
func CleanClipboard() *Pipeline {
	return NewPipeline(
		NormalizeUnicode,
		CollapseSpaces,
		JoinLines,
		TrimSpace,
	)
}
