package internal

import (
	"encoding/csv"
	"io"
	"iter"

	"github.com/cockroachdb/errors"
)

type CSVRecord[T any] struct {
	Value T
	Error error
}

// ParseCSV yields one value per CSV row. When hasHeader is set, the first row
// is consumed as column names and passed to fromCSV with every following row.
// Iteration stops after the first error is yielded.
func ParseCSV[T any](r io.Reader, hasHeader bool, fromCSV func(record, headers []string) (T, error)) iter.Seq[CSVRecord[T]] {
	return func(yield func(CSVRecord[T]) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true

		var headers []string
		if hasHeader {
			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(CSVRecord[T]{Error: errors.Wrap(err, "failed to read CSV header")})
				return
			}
			headers = row
		}

		for {
			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(CSVRecord[T]{Error: errors.Wrap(err, "failed to read CSV row")})
				return
			}

			value, err := fromCSV(row, headers)
			if err != nil {
				line, _ := reader.FieldPos(0)
				yield(CSVRecord[T]{Error: errors.Wrapf(err, "line %d", line)})
				return
			}
			if !yield(CSVRecord[T]{Value: value}) {
				return
			}
		}
	}
}
