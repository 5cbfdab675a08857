package importer

import (
	"regexp"
	"strings"

	"award-import-engine/internal/models"
)

// CriterionLabel pairs one German section label with the attribute key its
// content is stored under. New criteria are added by extending the table;
// the split algorithm is generic.
type CriterionLabel struct {
	Label string
	Key   models.CriteriaKey
}

// CriterionLabels returns the recognized section labels in canonical order.
func CriterionLabels() []CriterionLabel {
	return []CriterionLabel{
		{"Mut & Pioniergeist", models.CriteriaCourage},
		{"Innovationsgrad", models.CriteriaInnovation},
		{"Umsetzungskraft & Wirkung", models.CriteriaImplementation},
		{"Relevanz für die Mobilitätswende", models.CriteriaRelevance},
		{"Vorbildfunktion & Sichtbarkeit", models.CriteriaVisibility},
		{"Persönlichkeit & Motivation", models.CriteriaPersonality},
	}
}

// labelPattern matches any known label with flexible interior whitespace and
// an optional trailing colon.
var labelPattern = buildLabelPattern(CriterionLabels())

func buildLabelPattern(labels []CriterionLabel) *regexp.Regexp {
	alternatives := make([]string, len(labels))
	for i, l := range labels {
		parts := strings.Fields(l.Label)
		for j, p := range parts {
			parts[j] = regexp.QuoteMeta(p)
		}
		alternatives[i] = strings.Join(parts, `\s*`)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(alternatives, "|") + `)\s*:?`)
}

// ExtractCriteria splits a free-text description into the six named
// evaluation sections. The content following a recognized label, up to the
// next recognized label or end of text, becomes that label's value with
// whitespace runs collapsed and surrounding punctuation trimmed. When a
// label occurs more than once only the first occurrence's content is kept.
// A description with no labels yields six empty strings.
func ExtractCriteria(description string) map[models.CriteriaKey]string {
	criteria := make(map[models.CriteriaKey]string, len(CriterionLabels()))
	for _, l := range CriterionLabels() {
		criteria[l.Key] = ""
	}

	if strings.TrimSpace(description) == "" {
		return criteria
	}

	claimed := make(map[models.CriteriaKey]bool, len(CriterionLabels()))
	matches := labelPattern.FindAllStringSubmatchIndex(description, -1)
	for i, match := range matches {
		label := description[match[2]:match[3]]
		key, ok := labelKey(label)
		if !ok {
			continue
		}

		end := len(description)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		if claimed[key] {
			// First occurrence wins, even when its content is empty.
			continue
		}
		claimed[key] = true

		content := description[match[1]:end]
		content = strings.Join(strings.Fields(content), " ")
		content = strings.Trim(content, " \t\n\r\x00\x0B,;:")
		criteria[key] = content
	}

	return criteria
}

// labelKey resolves a matched label string, whitespace-insensitively, to its
// criteria key.
func labelKey(label string) (models.CriteriaKey, bool) {
	stripped := strings.ToLower(strings.Join(strings.Fields(label), ""))
	for _, l := range CriterionLabels() {
		if strings.ToLower(strings.Join(strings.Fields(l.Label), "")) == stripped {
			return l.Key, true
		}
	}
	return "", false
}
