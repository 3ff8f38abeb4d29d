package utils

import (
	"strconv"
)

// StringToInt parses s as a base-10 int, returning 0 when it is not one.
// Callers treat 0 as "no valid id".
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
