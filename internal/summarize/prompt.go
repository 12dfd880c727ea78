// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"strings"
)

// summaryPrompt builds the per-paper prompt. The five numbered sections
// give every summary the same structure regardless of backend.
func summaryPrompt(title, abstract string, keywords []string) string {
	keywordLine := "none"
	if len(keywords) > 0 {
		keywordLine = strings.Join(keywords, ", ")
	}

	var b strings.Builder
	b.WriteString("Write a concise, clear summary of the following academic paper.\n\n")
	fmt.Fprintf(&b, "**Title**: %s\n\n", title)
	fmt.Fprintf(&b, "**Keywords**: %s\n\n", keywordLine)
	fmt.Fprintf(&b, "**Abstract**: %s\n\n", abstract)
	b.WriteString(`Use exactly this structure:
1. **Topic**: the core subject of the paper, in one or two sentences
2. **Purpose**: the goal of the research and the problem it addresses
3. **Method**: the research method or approach used
4. **Findings**: the main results or discoveries
5. **Significance**: the academic or practical significance of the work

Write for a general reader, not a specialist.`)
	return b.String()
}

// executivePrompt builds the cross-paper trend-analysis prompt over the
// collected titles.
func executivePrompt(titles []string) string {
	var b strings.Builder
	b.WriteString("The following are titles of academic papers collected in one search session:\n\n")
	for i, title := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	b.WriteString(`
Analyze the overall research landscape these papers form and write an
executive summary with exactly this structure:

1. **Research fields**: the main fields the papers cover
2. **Common themes**: shared topics or concerns across the papers
3. **Trends**: the current research trends they reflect
4. **Future directions**: where this line of research is likely heading

Keep the analysis concise and insightful.`)
	return b.String()
}
