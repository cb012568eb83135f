// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"text/template"
)

var askPromptTmpl = template.Must(template.New("ask").Parse(
	`Answer the following question using the attached document.

Question: {{.Question}}`))

var askFigurePromptTmpl = template.Must(template.New("ask-figure").Parse(
	`Answer the following question about the figures, tables and charts in the attached document. Identify each figure or table you rely on by its number or caption, and describe what it shows before drawing conclusions from it.

Question: {{.Question}}`))

var extractPromptTmpl = template.Must(template.New("extract").Parse(
	`Extract the following information from the attached document according to the provided JSON schema: {{.Key}}.`))

var comparePromptTmpl = template.Must(template.New("compare").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(
		`I'm providing you with multiple research papers. IMPORTANT: You must analyze ALL the provided papers and compare them with each other. Make sure to identify each paper by its title and authors in your analysis.

For each paper, first identify its title and authors, then proceed with the comparison. Please analyze and compare {{.Subject}}, focusing on:
{{range $i, $f := .Focus}}{{inc $i}}. {{$f}}
{{end}}
Format your response with clear headings and bullet points where appropriate. Make sure to reference each paper by title throughout your analysis.`))

var keywordsPromptTmpl = template.Must(template.New("keywords").Parse(
	`I need to find related academic papers that are truly similar to the following paper. Please extract 5-7 key technical terms or phrases that would be most effective for finding closely related work in the same specific domain and application area.

Paper Title: {{.Title}}

Paper Summary: {{.Abstract}}

Important instructions:
1. ALWAYS include the main domain/application area as one of the keywords
2. ALWAYS include the main methodology as one of the keywords
3. Include specific phenomena being studied
4. Include distinctive technical approaches unique to this paper
5. Ensure the keywords together would find papers on very similar topics, not just general papers using similar methods

Respond with a JSON array of strings containing only the keywords or phrases, ordered from most to least important. Do not include the original paper title or author names as keywords.`))

// summaryPrompts maps each summary style to its fixed prompt.
var summaryPrompts = map[string]string{
	"default":      "Provide a concise summary of the attached document.",
	"key_findings": "Summarize the key findings and results presented in the attached document.",
	"technical":    "Provide a technical summary of the attached document, focusing on methodology and results for a researcher in the field.",
	"simple":       "Provide a simple, easy-to-understand summary of the main points of the attached document. Explain it like I'm 5 years old.",
	"eli5":         "Provide a simple, easy-to-understand summary of the main points of the attached document. Explain it like I'm 5 years old.",
}

// summaryAliases maps shorthand style names to canonical ones.
var summaryAliases = map[string]string{
	"tech": "technical",
}

// comparison describes one comparison type: what is compared and the five
// points the model must cover.
type comparison struct {
	Subject string
	Focus   []string
}

var comparisons = map[string]comparison{
	"general": {
		Subject: "ALL these papers",
		Focus: []string{
			"Key similarities and differences in their approaches",
			"How they relate to each other (complementary, contradictory, building upon each other)",
			"Main contributions of each paper",
			"Strengths and limitations of each approach",
			"A brief summary of how these papers collectively advance the field",
		},
	},
	"methods": {
		Subject: "the methodologies used in ALL these papers",
		Focus: []string{
			"Research approaches and techniques employed in each paper",
			"Similarities and differences in their methodological frameworks",
			"Experimental designs, datasets, and evaluation metrics",
			"Methodological strengths and limitations",
			"Innovations in research methods introduced by each paper",
		},
	},
	"results": {
		Subject: "the results and findings of ALL these papers",
		Focus: []string{
			"Key results and conclusions from each paper",
			"Areas of agreement and disagreement in their findings",
			"Comparative analysis of the significance of their results",
			"Limitations and uncertainties in their conclusions",
			"How the results collectively contribute to knowledge in the field",
		},
	},
	"impact": {
		Subject: "the potential impact of ALL these papers",
		Focus: []string{
			"Practical applications and implications of each paper",
			"Potential influence on future research directions",
			"Broader impact on the field and related disciplines",
			"Comparative assessment of their significance and novelty",
			"Long-term relevance and potential for further development",
		},
	},
}

// render executes tmpl with data.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
