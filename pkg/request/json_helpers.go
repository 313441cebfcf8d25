package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/edusite/edusite-api/pkg/types"
)

// ParseRFC3339Ptr parses an optional RFC3339 timestamp into a *time.Time.
// Empty input yields nil without error.
func ParseRFC3339Ptr(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ReadString trims the input if it is a string and returns an error otherwise.
func ReadString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	default:
		return "", fmt.Errorf("value is not a string")
	}
}

// ReadFloat converts JSON numbers to float64.
func ReadFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("value is not a number")
	}
}

// ReadMoney accepts JSON numbers or numeric strings as money amounts.
func ReadMoney(value interface{}) (types.Money, error) {
	switch v := value.(type) {
	case float64:
		return types.NewMoney(v), nil
	case int:
		return types.NewMoney(float64(v)), nil
	case string:
		return types.NewMoneyFromString(strings.TrimSpace(v))
	default:
		return types.Money{}, fmt.Errorf("value is not a number")
	}
}

// ReadBool asserts that the value is a boolean.
func ReadBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("value is not a boolean")
	}
}
