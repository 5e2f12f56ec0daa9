package parser

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/calinbraic/lqa/internal/domain"
)

// metricIssue mirrors one <issue> element of a metric or typology file.
// Issues nest: a child element's parent is the enclosing issue's type.
type metricIssue struct {
	Type    string        `xml:"type,attr"`
	Name    string        `xml:"name,attr"`
	Display string        `xml:"display,attr"`
	Issues  []metricIssue `xml:"issue"`
}

type metricDoc struct {
	XMLName xml.Name      `xml:"issues"`
	Issues  []metricIssue `xml:"issue"`
}

// ParseMetric parses a metric or typology XML document into an ordered list
// of entries. Document order is preserved depth-first, so a parent always
// precedes its children. Entries with display="no" are carried with the flag
// cleared rather than dropped.
func ParseMetric(raw string) ([]*domain.MetricEntry, error) {
	var doc metricDoc
	if err := xml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parsing metric file: %w", err)
	}
	if len(doc.Issues) == 0 {
		return nil, fmt.Errorf("no issues found in metric file")
	}

	var entries []*domain.MetricEntry
	var walk func(issues []metricIssue, parent string) error
	walk = func(issues []metricIssue, parent string) error {
		for _, issue := range issues {
			if issue.Type == "" {
				return fmt.Errorf("metric file: issue element missing type attribute (parent %q)", parent)
			}
			entries = append(entries, &domain.MetricEntry{
				IssueID: issue.Type,
				Parent:  parent,
				Name:    issue.Name,
				Display: parseDisplay(issue.Display),
			})
			if err := walk(issue.Issues, issue.Type); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc.Issues, ""); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseDisplay interprets the display attribute; absent means shown.
func parseDisplay(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "no", "false", "0", "hidden":
		return false
	default:
		return true
	}
}
