package importer

import (
	"bytes"
	"encoding/csv"
)

var templateHeaders = []string{
	"ID", "Name", "Organisation", "Position",
	"LinkedIn-Profil", "Website", "Artikel über die Person", "Beschreibung",
	"Kategorie", "Top 50", "E-Mail", "Vorgeschlagen von", "Notizen", "Foto",
}

var templateRows = [][]string{
	{
		"101", "Dr. Maria Müller", "Stadtwerke München", "Leiterin Innovation",
		"https://linkedin.com/in/maria-mueller", "https://swm.de", "",
		"Mut & Pioniergeist: Treibt die Verkehrswende mutig voran. " +
			"Innovationsgrad: Sehr hoch. " +
			"Umsetzungskraft & Wirkung: Mehrere Projekte erfolgreich umgesetzt.",
		"Verwaltung", "Ja", "maria.mueller@example.org", "Jury", "", "",
	},
	{
		"102", "Prof. Dr. Hans Schäfer", "TU Berlin", "Professor für Mobilität",
		"linkedin.com/in/hans-schaefer", "https://tu.berlin", "",
		"Relevanz für die Mobilitätswende: Forschung mit direktem Praxisbezug. " +
			"Vorbildfunktion & Sichtbarkeit: International anerkannt.",
		"Technologie", "Nein", "h.schaefer@example.org", "", "", "",
	},
	{
		"103", "Anna Böhm", "MoveNow GmbH", "Gründerin",
		"", "movenow.example", "",
		"Persönlichkeit & Motivation: Inspiriert ihr Team jeden Tag.",
		"Start-up", "Top 50", "anna@movenow.example", "Community-Voting", "", "Ja",
	},
}

// Template renders the downloadable CSV import template: a UTF-8 BOM so
// spreadsheet tools pick the right encoding, the canonical German headers and
// a few sample rows showing the expected formats.
func Template() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	w.Write(templateHeaders)
	for _, row := range templateRows {
		w.Write(row)
	}
	w.Flush()

	return buf.Bytes()
}
