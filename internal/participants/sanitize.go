package participants

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hyphenSpacing = regexp.MustCompile(`\s*-\s*`)
	spacedNumbers = regexp.MustCompile(`(\d)\s+(\d)`)
	invalidChars  = regexp.MustCompile(`[^\d,\-]`)
	leadingZeros  = regexp.MustCompile(`(^|[^\d])0+`)
	repeatedSeps  = regexp.MustCompile(`[,\-]{2,}`)
	danglingSeps  = regexp.MustCompile(`^[,\-]+|[,\-]+$`)
)

// Sanitize reduces raw range input to digits separated by single commas or
// hyphens. Whitespace around a hyphen is dropped and whitespace between two
// numbers becomes a comma. Other characters are removed, leading zeros are
// trimmed, a run of separators keeps only its last one and separators at
// either end are removed. A lone "0" disappears since participant numbers
// start at 1.
func Sanitize(raw string) string {
	text := hyphenSpacing.ReplaceAllString(raw, "-")
	for {
		next := spacedNumbers.ReplaceAllString(text, "${1},${2}")
		if next == text {
			break
		}
		text = next
	}
	text = invalidChars.ReplaceAllString(text, "")
	text = leadingZeros.ReplaceAllString(text, "${1}")
	text = repeatedSeps.ReplaceAllStringFunc(text, func(run string) string {
		return run[len(run)-1:]
	})
	return danglingSeps.ReplaceAllString(text, "")
}

// Clamp replaces every number in text that exceeds ceiling with ceiling.
// Separators are preserved. A ceiling of zero or less disables clamping.
func Clamp(text string, ceiling int) string {
	if ceiling <= 0 || text == "" {
		return text
	}
	limit := strconv.Itoa(ceiling)

	var b strings.Builder
	b.Grow(len(text))
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		digits := text[start:end]
		n, err := strconv.Atoi(digits)
		if err != nil || n > ceiling {
			// Atoi only fails on overflow here, which is above any ceiling.
			b.WriteString(limit)
		} else {
			b.WriteString(digits)
		}
		start = -1
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= '0' && c <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		b.WriteByte(c)
	}
	flush(len(text))
	return b.String()
}

// Normalize sanitizes raw, clamps it to ceiling and verifies that every
// token parses. The cleaned text is returned so it can be stored on a record.
func Normalize(raw string, ceiling int) (string, error) {
	text := Clamp(Sanitize(raw), ceiling)
	if err := Validate(text); err != nil {
		return "", err
	}
	return text, nil
}
