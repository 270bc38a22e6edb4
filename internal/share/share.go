// Package share hands a post off to the platform. There is no native share
// sheet in a terminal, so the clipboard is the primary target and a plain
// write to the fallback writer covers headless environments.
package share

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
)

type Sharer struct {
	// Fallback receives the payload when the clipboard is unavailable.
	Fallback io.Writer
}

// Share copies the post text to the system clipboard. Title and URL are
// appended to the fallback output only; the clipboard carries the bare text,
// matching what a paste into another app should produce.
func (s *Sharer) Share(title, text, url string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	} else if s.Fallback == nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "%s\n", title)
	}
	b.WriteString(text)
	if url != "" {
		fmt.Fprintf(&b, "\n%s", url)
	}
	b.WriteString("\n")

	if _, err := io.WriteString(s.Fallback, b.String()); err != nil {
		return fmt.Errorf("failed to write fallback: %w", err)
	}

	return nil
}
