package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConvertToString renders a backend value as the string the destination
// schema expects. ok is false for nil, which callers treat as absent.
func ConvertToString(val any) (s string, ok bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case time.Time:
		return v.UTC().Format(time.RFC3339), true
	case primitive.DateTime:
		return v.Time().UTC().Format(time.RFC3339), true
	case primitive.ObjectID:
		return v.Hex(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case bool:
		return strconv.FormatBool(v), true
	case primitive.A:
		return joinValues([]any(v)), true
	case []any:
		return joinValues(v), true
	case []string:
		return strings.Join(v, ","), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func joinValues(items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := ConvertToString(item); ok && strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}
