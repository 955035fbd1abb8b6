package util

import "strings"

const (
	maxFilenameRunes = 200
	fallbackBaseName = "youtube_download"
	emptyInputName   = "download"
)

// isForbidden covers the characters Windows refuses in names plus the C0
// and C1 control ranges.
func isForbidden(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return true
	}
	return r <= 0x1F || (r >= 0x80 && r <= 0x9F)
}

// SplitExtension splits name at its last dot. A dot at position 0 marks a
// hidden file rather than an extension.
func SplitExtension(name string) (base, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// SanitizeFilename makes a server supplied filename safe to write locally.
//
// Forbidden characters are removed from the base name. A lone forbidden
// character disappears; a run of two or more becomes a single space so
// that words separated only by punctuation stay apart. Leading and trailing
// dots are removed, whitespace is collapsed, and names longer than 200
// characters are cut and suffixed with "...". Other characters, typographic
// punctuation included, are left alone.
//
// The extension is returned unmodified. Callers writing to disk still need
// to reject path separators in it; LocalFileStore.Save does.
func SanitizeFilename(name string) string {
	if name == "" {
		return emptyInputName
	}
	name = strings.ToValidUTF8(name, "")

	base, ext := SplitExtension(name)
	base = stripForbidden(base)
	base = strings.Join(strings.Fields(base), " ")
	base = strings.Trim(base, ". ")

	if runes := []rune(base); len(runes) > maxFilenameRunes {
		base = string(runes[:maxFilenameRunes]) + "..."
	}
	if base == "" {
		base = fallbackBaseName
	}
	return base + ext
}

func stripForbidden(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	run := 0
	for _, r := range s {
		if isForbidden(r) {
			run++
			continue
		}
		if run >= 2 {
			b.WriteByte(' ')
		}
		run = 0
		b.WriteRune(r)
	}
	return b.String()
}
