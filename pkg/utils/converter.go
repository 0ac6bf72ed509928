// Package utils provides utility functions for the ESG compliance service.
// This file contains data conversion, rounding, and formatting utilities.
package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ================================================================================
// Numeric Conversion
// ================================================================================

// RoundTo1 rounds f to one decimal place using the shortest-decimal rules of
// strconv, so exact binary ties round half to even (1.25 -> 1.2, 3.75 -> 3.8).
func RoundTo1(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 1, 64), 64)
	if err != nil {
		return 0
	}
	if v == 0 {
		return 0
	}
	return v
}

// ToFloat64 coerces a dynamically typed value into a float64.
// Numbers and numeric strings convert; everything else (including booleans) does not.
func ToFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Stringify renders a dynamically typed value as text. Nested structures are
// rendered as JSON so empty collections render as "[]" or "{}", never as "".
func Stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprint(s)
		}
		return string(b)
	default:
		return fmt.Sprint(s)
	}
}

// ================================================================================
// Pointer Helpers
// ================================================================================

// StringPtr returns a pointer to s
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i
func IntPtr(i int) *int { return &i }

// ================================================================================
// Pagination
// ================================================================================

// NormalizePage clamps page and page size into valid ranges and returns the SQL offset.
func NormalizePage(page, pageSize, defaultSize, maxSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// TotalPages returns the number of pages needed for total items
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Contains reports whether slice contains value
func Contains(slice []string, value string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
