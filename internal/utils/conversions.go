package utils

import "strings"

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// ScopeList normalises a scope value that may arrive either as an OAuth2
// space delimited string or as a JSON array.
func ScopeList(v any) []string {
	switch scopes := v.(type) {
	case string:
		return strings.Fields(scopes)
	case []string:
		return scopes
	case []any:
		return ToStringSlice(scopes)
	default:
		return []string{}
	}
}
