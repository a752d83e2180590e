package helpers

import (
	"fmt"
	"strconv"
	"strings"
)

// CabinetPrefix is the letter cabinet numbers start with in a run of the given type.
func CabinetPrefix(runType string) string {
	switch strings.ToLower(runType) {
	case "base", "island":
		return "B"
	case "wall":
		return "W"
	case "tall":
		return "T"
	default:
		return "C"
	}
}

// NextCabinetNumber returns the prefix followed by one more than the highest
// number already taken with that prefix, e.g. B1, B2 -> B3.
func NextCabinetNumber(runType string, taken []string) string {
	prefix := CabinetPrefix(runType)
	highest := 0
	for _, number := range taken {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%d", prefix, highest+1)
}
