package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// emphasisStripper removes decorative markdown-style emphasis that AI extractors
// and OCR tools leave around ingredient names (e.g. "**Mjölk**", "_ägg_")
var emphasisStripper = strings.NewReplacer("*", "", "_", "", "~", "")

// letterFolder maps letters that Unicode does not decompose to a base letter
var letterFolder = strings.NewReplacer(
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ß", "ss",
	"ł", "l",
	"đ", "d",
)

// Normalize folds an ingredient token into its canonical comparison form:
// lowercase, trimmed, emphasis punctuation stripped, accented letters mapped to
// their base Latin letter (å→a, ä→a, ö→o, é→e) and inner whitespace collapsed.
// Pure and total; empty input yields empty output.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	result := strings.ToLower(s)
	result = emphasisStripper.Replace(result)
	result = foldDiacritics(result)
	result = letterFolder.Replace(result)

	return strings.Join(strings.Fields(result), " ")
}

// foldDiacritics decomposes and drops combining marks. A fresh transformer is
// built per call since transform chains carry state and are not safe to share.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// displayName cleans a raw token for presentation: emphasis stripped, whitespace
// collapsed, casing preserved
func displayName(raw string) string {
	return strings.Join(strings.Fields(emphasisStripper.Replace(raw)), " ")
}
