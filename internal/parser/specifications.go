package parser

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type specificationsDoc struct {
	XMLName  xml.Name      `xml:"specifications"`
	Sections []specSection `xml:"section"`
}

type specSection struct {
	Title string `xml:"title,attr"`
	Text  string `xml:",chardata"`
}

// ParseSpecifications parses a specifications XML document into plain text.
// Sections are rendered in document order; titled sections keep their title
// as a prefix line.
func ParseSpecifications(raw string) (string, error) {
	var doc specificationsDoc
	if err := xml.Unmarshal([]byte(raw), &doc); err != nil {
		return "", fmt.Errorf("parsing specifications file: %w", err)
	}

	var parts []string
	for _, section := range doc.Sections {
		text := strings.TrimSpace(section.Text)
		if text == "" {
			continue
		}
		if section.Title != "" {
			parts = append(parts, section.Title+": "+text)
		} else {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
