package metrics

import "strconv"

func formatLevel(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
