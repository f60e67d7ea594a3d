package receipt

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// RenderCSV writes one row per line: item_name, qty, total.
func RenderCSV(r Receipt) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	rows := [][]string{{"item_name", "qty", "total"}}
	for _, l := range r.Lines {
		rows = append(rows, []string{l.Name, strconv.Itoa(l.Qty), strconv.FormatFloat(l.Total, 'f', 2, 64)})
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}
