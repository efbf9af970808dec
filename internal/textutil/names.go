package textutil

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const dateSuffixLayout = "02.01.2006"

// DefaultName returns prefix_dd.MM.yyyy for the given day.
func DefaultName(prefix string, now time.Time) string {
	return prefix + "_" + now.Format(dateSuffixLayout)
}

// Label turns a block key such as "CHECKPOINTS_COUNT" into "Checkpoints Count".
// A cases.Caser keeps state between calls, so each call gets its own.
func Label(key string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(key, "_", " "))
}
