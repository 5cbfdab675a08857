package importer

import (
	"bytes"
	"encoding/csv"
	"strings"

	"award-import-engine/internal/models"
)

// Candidate delimiters, in sniffing order.
var delimiters = []rune{',', ';', '\t', '|'}

// headerScanLimit caps how many rows are inspected while looking for the
// header row before the run is declared header-less.
const headerScanLimit = 20

// delimiterSampleLines is how many non-blank leading lines feed the sniffer.
const delimiterSampleLines = 5

var utf8BOM = []byte("\xEF\xBB\xBF")

// StripBOM removes a leading UTF-8 byte-order mark.
func StripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, utf8BOM)
}

// DetectDelimiter sniffs the field delimiter from the leading lines of the
// file. For each candidate delimiter it parses up to five non-blank sample
// lines and computes the average field count and its variance; the delimiter
// with the highest average above one wins, with lowest variance as the
// tiebreak. Defaults to comma.
func DetectDelimiter(content []byte) rune {
	var samples []string
	for _, line := range strings.Split(string(StripBOM(content)), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		samples = append(samples, strings.TrimSuffix(line, "\r"))
		if len(samples) == delimiterSampleLines {
			break
		}
	}

	if len(samples) == 0 {
		return ','
	}

	best := ','
	bestAvg := 0.0
	bestVariance := 0.0

	for _, delim := range delimiters {
		counts := make([]float64, 0, len(samples))
		for _, line := range samples {
			counts = append(counts, float64(countFields(line, delim)))
		}

		var sum float64
		for _, c := range counts {
			sum += c
		}
		avg := sum / float64(len(counts))

		var variance float64
		for _, c := range counts {
			variance += (c - avg) * (c - avg)
		}
		variance /= float64(len(counts))

		if avg > 1 && (avg > bestAvg || (avg == bestAvg && variance < bestVariance)) {
			best = delim
			bestAvg = avg
			bestVariance = variance
		}
	}

	return best
}

// countFields parses a single line with the given delimiter and returns the
// field count, falling back to a naive split when the line is not valid CSV.
func countFields(line string, delim rune) int {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delim
	reader.LazyQuotes = true
	record, err := reader.Read()
	if err != nil {
		return len(strings.Split(line, string(delim)))
	}
	return len(record)
}

// ParseRecords parses the whole file into records with the given delimiter.
// Rows may have varying field counts; validation happens downstream.
func ParseRecords(content []byte, delim rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(StripBOM(content)))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// FindHeaderRow locates the true header row, skipping metadata or title rows
// that precede it. A row qualifies when any cell equals "id" or "nummer", or
// contains "name" (case-insensitive). Returns the record index of the header
// row. Gives up after headerScanLimit non-blank rows.
func FindHeaderRow(records [][]string) (int, []string, error) {
	scanned := 0

	for idx, record := range records {
		if rowIsBlank(record) {
			continue
		}
		scanned++

		for _, cell := range record {
			cell = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\xEF\xBB\xBF")))
			if cell == "id" || cell == "nummer" || strings.Contains(cell, "name") {
				headers := make([]string, len(record))
				for i, h := range record {
					headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\xEF\xBB\xBF"))
				}
				return idx, headers, nil
			}
		}

		if scanned >= headerScanLimit {
			break
		}
	}

	return 0, nil, models.ErrNoHeaderRow
}

// rowIsBlank reports whether every cell is empty after trimming.
func rowIsBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
