package importer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"award-import-engine/internal/models"
	"award-import-engine/internal/utils"
)

// Leading characters that turn a cell into a spreadsheet formula (or a DDE
// payload, for the pipe) when the data is re-exported and opened in Excel.
var formulaPrefix = regexp.MustCompile(`^[=+\-@\t\r|]`)

// schemePrefix matches an explicit http(s) scheme.
var schemePrefix = regexp.MustCompile(`(?i)^https?://`)

// NormalizeRow turns one raw CSV record into a typed ImportRow using the
// field mapping. Cells are trimmed, encoding-repaired and sanitized; URL
// fields are validated (invalid ones become empty rather than failing the
// row); category and status are normalized.
func NormalizeRow(record []string, mapping *FieldMapping, rowNumber int) models.ImportRow {
	get := func(canonical string) string {
		idx, ok := mapping.Column(canonical)
		if !ok || idx >= len(record) {
			return ""
		}
		return repairEncoding(strings.TrimSpace(record[idx]))
	}

	row := models.ImportRow{
		RowNumber:    rowNumber,
		ImportID:     SanitizeCell(get(FieldImportID)),
		Name:         SanitizeCell(get(FieldName)),
		Organisation: SanitizeCell(get(FieldOrganisation)),
		Position:     SanitizeCell(get(FieldPosition)),
		LinkedIn:     CleanURL(get(FieldLinkedIn)),
		Website:      CleanURL(get(FieldWebsite)),
		Article:      CleanURL(get(FieldArticle)),
		Description:  SanitizeCell(get(FieldDescription)),
		Category:     models.NormalizeCategory(SanitizeCell(get(FieldCategory))),
		Status:       models.NormalizeTopStatus(get(FieldStatus)),
		Email:        SanitizeCell(get(FieldEmail)),
		Nominator:    SanitizeCell(get(FieldNominator)),
		Notes:        SanitizeCell(get(FieldNotes)),
		Photo:        SanitizeCell(get(FieldPhoto)),
	}

	return row
}

// SanitizeCell neutralizes spreadsheet formula injection: a value starting
// with =, +, -, @, tab, carriage return or pipe is prefixed with a single
// quote. The original payload stays recoverable minus the prefix. Repairs
// are logged at debug for audit, not reported as errors.
func SanitizeCell(value string) string {
	if value == "" {
		return value
	}

	if formulaPrefix.MatchString(value) {
		utils.GetLogger().Debug("neutralized formula-like cell value",
			utils.String("prefix", value[:1]))
		return "'" + value
	}

	return value
}

// CleanURL validates a URL cell. A missing scheme gets https:// prepended;
// a value that still fails to parse as an absolute URL becomes the empty
// string instead of erroring the row.
func CleanURL(value string) string {
	if value == "" {
		return ""
	}

	if !schemePrefix.MatchString(value) {
		value = "https://" + value
	}

	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || strings.ContainsAny(value, " \t") {
		return ""
	}

	return value
}

// repairEncoding re-decodes cells that are not valid UTF-8 as Windows-1252,
// the encoding German spreadsheets most commonly leak. Best effort: if the
// byte sequence survives neither, it is kept as-is.
func repairEncoding(value string) string {
	if utf8.ValidString(value) {
		return value
	}

	repaired, err := charmap.Windows1252.NewDecoder().String(value)
	if err != nil {
		return value
	}

	utils.GetLogger().Debug("repaired non-UTF-8 cell value")
	return repaired
}
