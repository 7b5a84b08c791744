package provenance

import (
	"strings"
)

// Assemble joins the chosen texts of records (already in emission order)
// with blank lines into the final markdown document.
func Assemble(records []Record) string {
	texts := make([]string, 0, len(records))
	for _, rec := range records {
		texts = append(texts, rec.ChosenText)
	}
	return strings.Join(texts, "\n\n")
}

// Annotate inserts an inline comment after each paragraph boundary naming
// the source that produced it. The mapping is positional: it walks the
// assembled text line by line and matches blank-line boundaries to
// sequential record indices. A chosen text that itself contains blank lines
// (a multi-paragraph table rendering, say) desynchronizes the mapping from
// that point on; the markers for such documents are unverified.
func Annotate(markdown string, records []Record) string {
	if markdown == "" || len(records) == 0 {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	output := make([]string, 0, len(lines)+len(records))
	recIdx := 0

	for i, line := range lines {
		if strings.TrimSpace(line) == "" && i > 0 && strings.TrimSpace(lines[i-1]) != "" {
			// Paragraph break: close out the current record.
			if recIdx < len(records) {
				output = append(output, marker(records[recIdx]))
			}
			recIdx++
		}
		output = append(output, line)
	}

	// Trailing segment with no blank line after it.
	if strings.TrimSpace(output[len(output)-1]) != "" && recIdx < len(records) {
		output = append(output, marker(records[recIdx]))
	}

	return strings.Join(output, "\n")
}

func marker(rec Record) string {
	if rec.Source == SourceLLM && rec.LLMPick != nil {
		return "<!-- src:LLM:" + *rec.LLMPick + " -->"
	}
	return "<!-- src:" + string(rec.Source) + " -->"
}
