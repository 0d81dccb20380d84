package jira

import "strings"

// Minimal Atlassian Document Format support: issue descriptions are a doc of
// paragraphs of text nodes, which is all this adapter reads or writes.

type adfDoc struct {
	Type    string    `json:"type"`
	Version int       `json:"version,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

// adfFromText wraps plain text in a single-paragraph document.
func adfFromText(text string) *adfDoc {
	return &adfDoc{
		Type:    "doc",
		Version: 1,
		Content: []adfNode{
			{
				Type:    "paragraph",
				Content: []adfNode{{Type: "text", Text: text}},
			},
		},
	}
}

// textFromADF flattens the paragraph text nodes of a description document.
func textFromADF(doc *adfDoc) string {
	if doc == nil {
		return ""
	}
	var parts []string
	for _, node := range doc.Content {
		if node.Type != "paragraph" {
			continue
		}
		for _, child := range node.Content {
			if child.Type == "text" && child.Text != "" {
				parts = append(parts, child.Text)
			}
		}
	}
	return strings.Join(parts, " ")
}
