package block

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// WriteCSV serializes blocks in the "sfc_head,sfc_tail,z" layout the block
// store's COPY FROM expects: array columns use curly-brace literals
// (Postgres array-literal syntax) rather than square brackets.
func WriteCSV(w io.Writer, blocks []Block) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"sfc_head", "sfc_tail", "z"}); err != nil {
		return err
	}

	for _, b := range blocks {
		row := []string{
			strconv.FormatInt(b.Head, 10),
			curlyInts(b.Tails),
			curlyFloats(b.Zs),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return cw.Error()
}

// WriteHistogramCSV serializes the head/tail-count histogram side-output.
func WriteHistogramCSV(w io.Writer, hist []HistEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"head", "num_tail"}); err != nil {
		return err
	}
	for _, h := range hist {
		row := []string{
			strconv.FormatInt(h.Head, 10),
			strconv.Itoa(h.NumTail),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

func curlyInts(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func curlyFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
