package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// unsafeFileChars matches whitespace and characters that are not portable in
// file names on the platforms protocols are exchanged between.
var unsafeFileChars = regexp.MustCompile(`[\s|\\?*<":>+\[\]/']`)

// SanitizeFileName composes name to NFC and removes whitespace and
// filesystem-unsafe characters. Leading dots are dropped so the result never
// names a hidden file.
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = unsafeFileChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, ".")
}

// EnsureExtension appends ext unless name already ends with it, ignoring case.
func EnsureExtension(name, ext string) string {
	if HasExtension(name, ext) {
		return name
	}
	return name + ext
}

// HasExtension reports whether name ends with ext, ignoring case.
func HasExtension(name, ext string) bool {
	return len(name) >= len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext)
}

// TrimExtension removes ext from the end of name, ignoring case.
func TrimExtension(name, ext string) string {
	if HasExtension(name, ext) {
		return name[:len(name)-len(ext)]
	}
	return name
}
