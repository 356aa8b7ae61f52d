package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVReader reads delimited text with a header row. Without an explicit
// Comma the delimiter is sniffed from the header line (comma or semicolon).
type CSVReader struct {
	Comma rune
}

func (r *CSVReader) Read(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	buffered := bufio.NewReader(file)
	comma := r.Comma
	if comma == 0 {
		firstLine, _ := buffered.Peek(4096)
		comma = sniffDelimiter(firstLine)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	normalizedHeaders := normalizeHeaders(headers)

	records := make([]Record, 0, 128)
	rowNumber := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNumber++
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNumber, err)
		}

		record := Record{RowNumber: rowNumber, Values: rowValues(normalizedHeaders, row)}
		if record.IsBlank() {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func sniffDelimiter(sample []byte) rune {
	if idx := bytes.IndexByte(sample, '\n'); idx >= 0 {
		sample = sample[:idx]
	}
	if bytes.Count(sample, []byte(";")) > bytes.Count(sample, []byte(",")) {
		return ';'
	}
	return ','
}
