package slogx

import "strings"

// Masked replaces sensitive values in logged payloads.
const Masked = "***MASKED***"

// sensitiveFields are request/response body keys whose values must
// never reach the logs.
var sensitiveFields = map[string]struct{}{
	"password":         {},
	"current_password": {},
	"new_password":     {},
	"token":            {},
	"secret":           {},
	"api_key":          {},
	"access_token":     {},
	"refresh_token":    {},
	"code":             {},
}

// sensitiveHeaders are HTTP headers whose values must never reach the
// logs. Keys are canonical lowercase.
var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"x-api-key":     {},
}

// MaskFields returns a copy of data with sensitive field values
// replaced. Nested maps are masked recursively; the input is left
// untouched.
func MaskFields(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, ok := sensitiveFields[strings.ToLower(k)]; ok {
			out[k] = Masked
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = MaskFields(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// MaskHeader returns the value to log for the given header name.
func MaskHeader(name, value string) string {
	if _, ok := sensitiveHeaders[strings.ToLower(name)]; ok {
		return Masked
	}
	return value
}
