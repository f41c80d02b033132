package cli

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for counts in status lines.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// Byte size units.
const (
	kib = 1024
	mib = 1024 * kib
)

// formatCount formats n with thousand separators, e.g. 18248 -> "18,248".
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatBytes renders a file size for listings.
func formatBytes(n int64) string {
	switch {
	case n >= mib:
		return printer.Sprintf("%.1f MiB", float64(n)/mib)
	case n >= kib:
		return printer.Sprintf("%.1f KiB", float64(n)/kib)
	default:
		return printer.Sprintf("%d B", n)
	}
}

// plural returns word with an "s" unless n is 1.
func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
