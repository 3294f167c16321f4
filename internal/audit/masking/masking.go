package masking

import "strings"

const maskToken = "****"

// referenceKeys are the metadata keys whose values identify a payment
// or credential. Only these are masked; the rest of the trail stays
// readable in the admin views.
var referenceKeys = map[string]struct{}{
	"payment_id":            {},
	"order_id":              {},
	"gateway_order_id":      {},
	"transaction_reference": {},
	"signature":             {},
	"token":                 {},
	"secret":                {},
	"password":              {},
}

// MaskReference redacts a payment reference while keeping the gateway
// prefix and a short suffix, enough to correlate with the gateway
// dashboard without exposing the full id.
func MaskReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	prefix, remainder := splitPrefix(trimmed)
	if len(remainder) <= 4 {
		return prefix + maskToken
	}

	return prefix + maskToken + remainder[len(remainder)-4:]
}

// MaskMetadata returns a copy of the metadata with values under
// reference keys masked. Nested maps and lists are walked; keys that
// are not references pass through untouched.
func MaskMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		masked[trimmedKey] = maskValue(trimmedKey, value)
	}

	if len(masked) == 0 {
		return nil
	}
	return masked
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if isReferenceKey(key) {
			return MaskReference(cast)
		}
		return cast
	case map[string]any:
		return MaskMetadata(cast)
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, maskValue(key, item))
		}
		return out
	default:
		return value
	}
}

func isReferenceKey(key string) bool {
	_, ok := referenceKeys[strings.ToLower(key)]
	return ok
}

func splitPrefix(value string) (string, string) {
	lastUnderscore := strings.LastIndex(value, "_")
	if lastUnderscore == -1 || lastUnderscore == len(value)-1 {
		return "", value
	}
	return value[:lastUnderscore+1], value[lastUnderscore+1:]
}
