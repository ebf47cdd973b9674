package mcphost

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

type args map[string]any

func argsOf(req mcp.CallToolRequest) args {
	return args(req.GetArguments())
}

func (a args) str(key string) string {
	switch value := a[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

func (a args) text(key string) string {
	value, _ := a[key].(string)
	return value
}

func (a args) requireStr(key string) (string, error) {
	value := a.str(key)
	if value == "" {
		return "", errMissing(key)
	}

	return value, nil
}

// number reads a non-negative integer sent either as a JSON number or a
// numeric string.
func (a args) number(key string) (uint64, bool, error) {
	switch value := a[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if value < 0 || value != math.Trunc(value) {
			return 0, false, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		return uint64(value), true, nil
	case int:
		if value < 0 {
			return 0, false, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		return uint64(value), true, nil
	case string:
		if strings.TrimSpace(value) == "" {
			return 0, false, nil
		}
		parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		return parsed, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
	}
}

// seconds reads a duration given in (possibly fractional) seconds.
func (a args) seconds(key string) (time.Duration, error) {
	switch value := a[key].(type) {
	case nil:
		return 0, nil
	case float64:
		if value < 0 {
			return 0, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		return time.Duration(value * float64(time.Second)), nil
	case string:
		if strings.TrimSpace(value) == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || parsed < 0 {
			return 0, fmt.Errorf("%w: %s must be a number of seconds", domain.ErrInvalidInput, key)
		}
		return time.Duration(parsed * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number of seconds", domain.ErrInvalidInput, key)
	}
}

func (a args) list(key string) []string {
	switch value := a[key].(type) {
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return value
	case string:
		return strings.Split(value, ",")
	default:
		return nil
	}
}

func (a args) object(key string) map[string]any {
	value, _ := a[key].(map[string]any)
	return value
}

func errMissing(key string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, key)
}
