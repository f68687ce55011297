package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseMarks parses a comma separated list of voltages.
func parseMarks(s string) ([]float64, error) {
	var marks []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid mark %q: %w", field, err)
		}
		marks = append(marks, v)
	}
	return marks, nil
}

func formatMarks(marks []float64) string {
	parts := make([]string, len(marks))
	for i, m := range marks {
		parts[i] = strconv.FormatFloat(m, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}
