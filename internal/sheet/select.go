package sheet

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SelectSheet picks the sheet holding records of the given kind.
//
// Exact candidates are tried first, in order: the kind capitalized, the
// kind verbatim, the kind with an "i" suffix, and the kind minus its last
// letter, capitalized, with an "i" suffix ("Clienti" for "clienti",
// "Partnei" for "partner"). Then the first sheet whose name contains the
// kind case-insensitively, then the first sheet. The result is false only
// when names is empty.
func SelectSheet(names []string, kind string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}

	for _, candidate := range sheetCandidates(kind) {
		for _, name := range names {
			if name == candidate {
				return name, true
			}
		}
	}

	if kind != "" {
		lower := strings.ToLower(kind)
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), lower) {
				return name, true
			}
		}
	}

	return names[0], true
}

func sheetCandidates(kind string) []string {
	if kind == "" {
		return nil
	}
	truncated := kind
	if _, size := utf8.DecodeLastRuneInString(kind); size > 0 {
		truncated = kind[:len(kind)-size]
	}
	return []string{
		capitalize(kind),
		kind,
		kind + "i",
		capitalize(truncated) + "i",
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
