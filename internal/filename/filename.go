// Package filename checks and repairs filesystem compatibility of file names.
// Diacritics are folded to ASCII and characters that break at least one major
// filesystem are replaced, mirroring what the repair pipeline's rename action
// applies.
package filename

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"flackit/internal/analysis"
)

// maxNameBytes is the smallest name limit across common filesystems.
const maxNameBytes = 255

// unsafeReplacer folds characters that are reserved on Windows or shells.
// Separators become dashes, the rest are dropped.
var unsafeReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// stripMarks decomposes text and removes the combining marks, turning
// "Béla" into "Bela".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Check reports compatibility findings for the file's base name. All findings
// share one rule ID and WARNING severity; the message carries the specifics.
func Check(path string) []analysis.Finding {
	name := filepath.Base(path)
	var findings []analysis.Finding

	warn := func(format string, args ...any) {
		findings = append(findings, analysis.Finding{
			Rule:     analysis.RuleFilenameCompat,
			Severity: analysis.SeverityWarning,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if len(name) > maxNameBytes {
		warn("file name is %d bytes, exceeding the %d-byte filesystem limit", len(name), maxNameBytes)
	}
	if unsafe := unsafeCharacters(name); unsafe != "" {
		warn("file name contains characters unsafe on some filesystems: %s", unsafe)
	}
	if strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), " ") {
		warn("file name stem ends with a space")
	}
	for _, r := range name {
		if r > unicode.MaxASCII {
			warn("file name contains non-ASCII characters; some targets cannot store it")
			break
		}
	}
	return findings
}

// Sanitize returns the compatible form of name: diacritics folded, unsafe
// characters replaced, whitespace trimmed, and the stem truncated to fit the
// name limit while keeping the extension intact.
func Sanitize(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err == nil {
		name = folded
	}
	name = unsafeReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r > unicode.MaxASCII {
			return -1
		}
		return r
	}, name)

	ext := filepath.Ext(name)
	stem := strings.TrimSpace(strings.TrimSuffix(name, ext))
	if stem == "" {
		stem = "untitled"
	}
	for len(stem)+len(ext) > maxNameBytes {
		stem = stem[:len(stem)-1]
	}
	return stem + ext
}

// Repair renames path to its sanitized form inside the same directory. It
// returns the resulting path and whether a rename happened. An existing file
// at the sanitized name aborts the rename rather than overwriting it.
func Repair(path string) (string, bool, error) {
	name := filepath.Base(path)
	repaired := Sanitize(name)
	if repaired == name {
		return path, false, nil
	}

	target := filepath.Join(filepath.Dir(path), repaired)
	if _, err := os.Stat(target); err == nil {
		return path, false, fmt.Errorf("rename target already exists: %s", target)
	} else if !os.IsNotExist(err) {
		return path, false, err
	}

	if err := os.Rename(path, target); err != nil {
		return path, false, fmt.Errorf("rename %s: %w", path, err)
	}
	return target, true, nil
}

func unsafeCharacters(name string) string {
	var found []string
	seen := make(map[rune]bool)
	for _, r := range name {
		if seen[r] {
			continue
		}
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			seen[r] = true
			found = append(found, fmt.Sprintf("%q", r))
		default:
			if r < 0x20 {
				seen[r] = true
				found = append(found, fmt.Sprintf("%q", r))
			}
		}
	}
	return strings.Join(found, " ")
}
