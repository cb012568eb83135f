package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/ai"
	"github.com/pdiddy/research-assistant/internal/cite"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one arXiv query and act on its first page",
	Long: `Search runs a single arXiv query, prints the first page of results and
then applies the requested actions to papers on that page, in this order:
download, ask, ask-fig, summarize, extract, compare, related, cite.

Papers are referred to by their result number as printed. With --start N
the first page begins at offset N and numbering at N+1. Actions run against
that page only; use the shell to page further.`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.String("query", "", "arXiv query, e.g. 'ti:transformer AND cat:cs.CL' (required)")
	f.IntP("start", "s", 0, "starting offset of the first page (result numbers begin at start+1)")
	f.Int("max", 0, "results per page (default from config, 10)")
	f.String("sort-by", "", "sort field: relevance, lastUpdatedDate, submittedDate")
	f.String("sort-order", "", "sort order: ascending, descending")
	f.String("download", "", "result numbers to download, e.g. 1,3")
	f.Int("ask", 0, "result number to ask --question about")
	f.Int("ask-fig", 0, "result number to ask --question about, focusing on figures")
	f.String("question", "", "question for --ask or --ask-fig")
	f.Int("summarize", 0, "result number to summarize")
	f.String("style", ai.DefaultSummary, "summary style: "+optionList("summarize"))
	f.Int("extract", 0, "result number to extract from")
	f.String("key", "", "extraction type: "+optionList("extract"))
	f.String("compare", "", "result numbers to compare, e.g. 1,2,4")
	f.String("compare-type", ai.DefaultComparison, "comparison type: "+optionList("compare"))
	f.Int("related", 0, "result number to find related work for")
	f.Int("cite", 0, "result number to cite")
	f.String("format", string(cite.DefaultStyle), "citation style: "+optionList("cite"))
	_ = searchCmd.MarkFlagRequired("query")

	_ = viper.BindPFlag("max_results", f.Lookup("max"))
	_ = viper.BindPFlag("sort_by", f.Lookup("sort-by"))
	_ = viper.BindPFlag("sort_order", f.Lookup("sort-order"))

	rootCmd.AddCommand(searchCmd)
}

// searchActions holds the one-shot action flags.
type searchActions struct {
	Query       string
	Start       int
	Download    string
	Ask         int
	AskFig      int
	Question    string
	Summarize   int
	Style       string
	Extract     int
	Key         string
	Compare     string
	CompareType string
	Related     int
	Cite        int
	Format      string
}

func actionsFromFlags(cmd *cobra.Command) searchActions {
	f := cmd.Flags()
	str := func(name string) string { v, _ := f.GetString(name); return v }
	num := func(name string) int { v, _ := f.GetInt(name); return v }
	return searchActions{
		Query:       str("query"),
		Start:       num("start"),
		Download:    str("download"),
		Ask:         num("ask"),
		AskFig:      num("ask-fig"),
		Question:    str("question"),
		Summarize:   num("summarize"),
		Style:       str("style"),
		Extract:     num("extract"),
		Key:         str("key"),
		Compare:     str("compare"),
		CompareType: str("compare-type"),
		Related:     num("related"),
		Cite:        num("cite"),
		Format:      str("format"),
	}
}

// lines renders the actions as shell commands, query first.
func (a searchActions) lines() ([]string, error) {
	q := strings.TrimSpace(a.Query)
	if q == "" {
		return nil, errors.New("--query is required")
	}
	if a.Start < 0 {
		return nil, errors.New("--start cannot be negative")
	}
	out := []string{"query " + q}
	if a.Start > 0 {
		out[0] = fmt.Sprintf("query --start %d %s", a.Start, q)
	}

	if a.Download != "" {
		out = append(out, "download "+a.Download)
	}
	if (a.Ask > 0 || a.AskFig > 0) && strings.TrimSpace(a.Question) == "" {
		return nil, errors.New("--ask and --ask-fig need --question")
	}
	if a.Ask > 0 {
		out = append(out, fmt.Sprintf("ask %d \"%s\"", a.Ask, a.Question))
	}
	if a.AskFig > 0 {
		out = append(out, fmt.Sprintf("ask-figure %d \"%s\"", a.AskFig, a.Question))
	}
	if a.Summarize > 0 {
		out = append(out, strings.TrimSpace(fmt.Sprintf("summarize %d %s", a.Summarize, a.Style)))
	}
	if a.Extract > 0 {
		if a.Key == "" {
			return nil, fmt.Errorf("--extract needs --key (%s)", optionList("extract"))
		}
		out = append(out, fmt.Sprintf("extract %d %s", a.Extract, a.Key))
	}
	if a.Compare != "" {
		out = append(out, strings.TrimSpace("compare "+a.Compare+" "+a.CompareType))
	}
	if a.Related > 0 {
		out = append(out, fmt.Sprintf("related %d", a.Related))
	}
	if a.Cite > 0 {
		out = append(out, strings.TrimSpace(fmt.Sprintf("cite %d %s", a.Cite, a.Format)))
	}
	return out, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	lines, err := actionsFromFlags(cmd).lines()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for i, line := range lines {
		res, err := a.ctl.Dispatch(cmd.Context(), line)
		fmt.Fprint(out, res)
		if err == nil {
			continue
		}
		report(out, err)
		if i == 0 {
			return fmt.Errorf("query failed: %w", err)
		}
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d actions failed", failed, len(lines)-1)
	}
	return nil
}

// optionList lists the values a command option accepts.
func optionList(cmd string) string {
	switch cmd {
	case "summarize":
		return strings.Join(ai.SummaryStyles(), ", ")
	case "extract":
		return strings.Join(ai.ExtractionKeys(), ", ")
	case "compare":
		return strings.Join(ai.ComparisonTypes(), ", ")
	case "cite":
		return strings.Join(cite.Styles(), ", ")
	}
	return ""
}
