package stringsutil

import "strings"

// RemoveEmptyStrings trims every element and drops the ones left empty.
func RemoveEmptyStrings(slice []string) []string {
	result := make([]string, 0, len(slice))

	for _, s := range slice {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}

	return result
}

// SplitNonEmpty splits s on sep and returns the trimmed, non-empty parts.
func SplitNonEmpty(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return RemoveEmptyStrings(strings.Split(s, sep))
}
