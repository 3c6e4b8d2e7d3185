package runner

import (
	"strings"
	"unicode"
)

const (
	sanitizedReplacementRune    = '_'
	maximumRunLabelLengthRunes  = 50
	runLabelExtraAllowedRunes   = "-_."
	scriptNameExtraAllowedRunes = "-_"
)

// SanitizeRunLabel turns a command line or recipe name into a directory-safe label of at most 50 characters.
func SanitizeRunLabel(label string) string {
	sanitized := make([]rune, 0, maximumRunLabelLengthRunes)
	for _, character := range label {
		if len(sanitized) == maximumRunLabelLengthRunes {
			break
		}
		if unicode.IsLetter(character) || unicode.IsNumber(character) || strings.ContainsRune(runLabelExtraAllowedRunes, character) {
			sanitized = append(sanitized, character)
			continue
		}
		sanitized = append(sanitized, sanitizedReplacementRune)
	}
	return string(sanitized)
}

// SanitizeScriptName lower-cases name and replaces everything outside [a-z0-9-_] with an underscore.
func SanitizeScriptName(name string) string {
	var builder strings.Builder
	for _, character := range name {
		switch {
		case character < unicode.MaxASCII && (unicode.IsLetter(character) || unicode.IsDigit(character)):
			builder.WriteRune(unicode.ToLower(character))
		case strings.ContainsRune(scriptNameExtraAllowedRunes, character):
			builder.WriteRune(character)
		default:
			builder.WriteRune(sanitizedReplacementRune)
		}
	}
	return builder.String()
}
