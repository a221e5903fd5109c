// Package controller routes parsed automation actions to OS-facing
// handlers. Handlers report outcomes as data: a failed command is a
// Result with Success=false, never an error or a panic escaping to the
// caller.
package controller

import (
	"fmt"
	"strconv"
)

// Result is the uniform outcome of every controller invocation.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Controller is a handler claiming one or more action names.
type Controller interface {
	// Name identifies the controller in logs.
	Name() string
	// Actions returns the action names this controller claims.
	Actions() []string
	// Handle executes one action. It must validate its own params and
	// return a failure Result rather than panicking.
	Handle(action string, params map[string]any) Result
}

func success(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

func successData(data map[string]any, format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...), Data: data}
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// stringParam returns the first non-empty string value among keys.
func stringParam(params map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := params[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// intParam coerces a numeric or numeric-string param. JSON decoding hands
// us float64 for numbers.
func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
