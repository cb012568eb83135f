// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// extractionSchemas maps each extraction key to the JSON schema the model's
// reply must follow.
var extractionSchemas = map[string]*genai.Schema{
	"methods": {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"methodologies": {
				Type:        genai.TypeArray,
				Description: "List of key methodologies, techniques, or approaches used in the paper.",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"methodologies"},
	},
	"conclusion": {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"main_conclusion": {
				Type:        genai.TypeString,
				Description: "The main conclusion or takeaway message of the paper.",
			},
			"future_work": {
				Type:        genai.TypeArray,
				Description: "Suggestions for future work mentioned in the paper.",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"main_conclusion"},
	},
	"datasets": {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"datasets_used": {
				Type:        genai.TypeArray,
				Description: "List of specific datasets mentioned as being used or analyzed in the paper.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":   {Type: genai.TypeString, Description: "Name of the dataset"},
						"source": {Type: genai.TypeString, Description: "Source or reference for the dataset (if mentioned)"},
					},
					Required: []string{"name"},
				},
			},
		},
		Required: []string{"datasets_used"},
	},
}

// keywordsSchema constrains keyword replies to a list of strings.
var keywordsSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}

// ExtractionKeys returns the supported extraction keys, sorted.
func ExtractionKeys() []string {
	return sortedKeys(extractionSchemas)
}

// SummaryStyles returns the supported summary styles, sorted.
func SummaryStyles() []string {
	return sortedKeys(summaryPrompts)
}

// ComparisonTypes returns the supported comparison types, sorted.
func ComparisonTypes() []string {
	return sortedKeys(comparisons)
}

// SummaryStyle canonicalizes a summary style name. Empty selects
// DefaultSummary and "tech" is accepted for "technical".
func SummaryStyle(style string) (string, error) {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = DefaultSummary
	}
	if canonical, ok := summaryAliases[style]; ok {
		style = canonical
	}
	if _, ok := summaryPrompts[style]; !ok {
		return "", types.NewError(types.KindNotFound, "summary style",
			fmt.Errorf("unknown summary style %q (supported: %s)", style, strings.Join(SummaryStyles(), ", ")))
	}
	return style, nil
}

// ExtractionKey canonicalizes an extraction key.
func ExtractionKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := extractionSchemas[key]; !ok {
		return "", types.NewError(types.KindNotFound, "extraction type",
			fmt.Errorf("unknown extraction type %q (supported: %s)", key, strings.Join(ExtractionKeys(), ", ")))
	}
	return key, nil
}

// ComparisonType canonicalizes a comparison type. Empty selects
// DefaultComparison.
func ComparisonType(kind string) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = DefaultComparison
	}
	if _, ok := comparisons[kind]; !ok {
		return "", types.NewError(types.KindNotFound, "comparison type",
			fmt.Errorf("unknown comparison type %q (supported: %s)", kind, strings.Join(ComparisonTypes(), ", ")))
	}
	return kind, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
