package schema

import "strings"

// deriveTableName derives a table name from a Go record type name the way
// spec.md §4.1 requires: insert '_' before every non-initial uppercase
// letter, lowercase everything, append 's'.
func deriveTableName(recordName string) string {
	return snakeCase(recordName) + "s"
}

// deriveColumnName derives a column name from a Go struct field name using
// the same snake_case rule as deriveTableName, without the trailing 's'.
func deriveColumnName(fieldName string) string {
	return snakeCase(fieldName)
}

func snakeCase(name string) string {
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && isUpper(r) {
			sb.WriteByte('_')
		}
		sb.WriteRune(toLower(r))
	}
	return sb.String()
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func toLower(r rune) rune {
	if isUpper(r) {
		return r + ('a' - 'A')
	}
	return r
}
