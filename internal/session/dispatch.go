// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/ai"
	"github.com/pdiddy/research-assistant/internal/cite"
	"github.com/pdiddy/research-assistant/internal/library"
	"github.com/pdiddy/research-assistant/internal/related"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const libraryListLimit = 20

// Commands lists every command word Dispatch accepts, aliases included.
var Commands = []string{
	"query", "q", "next", "n", "next-page", "download", "d",
	"ask", "ask-figure", "ask_fig", "ask-fig", "summarize", "sum",
	"extract", "ext", "compare", "related", "rel", "cite",
	"set", "show", "help", "?", "quit", "exit",
}

var quotedArg = regexp.MustCompile(`^\s*"(.*)"\s*$`)

// Dispatch runs one command line and returns its output. Unknown commands
// return a not-found error without touching session state. The quit
// command returns ErrQuit.
func (c *Controller) Dispatch(ctx context.Context, line string) (string, error) {
	cmd, args := splitCommand(line)
	switch cmd {
	case "":
		return "", nil
	case "quit", "exit":
		return "", ErrQuit
	case "help", "?":
		return Help(), nil
	case "query", "q":
		return c.cmdQuery(ctx, args)
	case "next", "n", "next-page":
		return c.cmdNext(ctx)
	case "download", "d":
		return c.cmdDownload(ctx, args)
	case "ask", "ask-figure", "ask_fig", "ask-fig":
		return c.cmdAsk(ctx, cmd, args)
	case "summarize", "sum":
		return c.cmdSummarize(ctx, args)
	case "extract", "ext":
		return c.cmdExtract(ctx, args)
	case "compare":
		return c.cmdCompare(ctx, args)
	case "related", "rel":
		return c.cmdRelated(ctx, args)
	case "cite":
		return c.cmdCite(args)
	case "set":
		return c.cmdSet(args)
	case "show":
		return c.cmdShow(ctx, args)
	}
	return "", types.NewError(types.KindNotFound, "dispatch",
		fmt.Errorf("unrecognized command %q; type 'help' for the command list", cmd))
}

// cmdQuery accepts "query [--start N] <text>".
func (c *Controller) cmdQuery(ctx context.Context, args string) (string, error) {
	start := 0
	if flag, rest := splitCommand(args); flag == "--start" || flag == "-s" {
		n, text, err := leadingNumber(rest)
		if err != nil {
			return "", usage("query [--start N] <text>", err)
		}
		start, args = n, text
	}
	page, err := c.RunQueryFrom(ctx, args, start)
	if err != nil {
		return "", err
	}
	return c.renderPage(page), nil
}

func (c *Controller) cmdNext(ctx context.Context) (string, error) {
	page, err := c.NextPage(ctx)
	if err != nil {
		return "", err
	}
	return c.renderPage(page), nil
}

func (c *Controller) renderPage(page *types.ResultPage) string {
	var b strings.Builder
	search.FormatPage(&b, page, c.width)
	if err := page.Check(); err != nil {
		fmt.Fprintf(&b, "[!] warning: %v\n", err)
	} else if len(page.Papers) > 0 && page.Last() >= page.Total {
		fmt.Fprintln(&b, "[-] Reached end of results.")
	}
	return b.String()
}

func (c *Controller) cmdDownload(ctx context.Context, args string) (string, error) {
	nums, err := parseNumbers(args)
	if err != nil {
		return "", usage("download N[,M,...]", err)
	}

	res := c.DownloadBatch(ctx, nums)
	var b strings.Builder
	for _, n := range nums {
		if path, ok := res.Paths[n]; ok {
			fmt.Fprintf(&b, "[+] [%d] %s\n", n, path)
		}
	}
	for _, f := range res.Failed {
		fmt.Fprintf(&b, "[!] %v\n", f)
	}
	fmt.Fprintf(&b, "[*] Downloaded %d of %d papers", res.Succeeded, res.Total())
	if len(res.Failed) > 0 {
		fmt.Fprintf(&b, " (%d failed)", len(res.Failed))
	}
	b.WriteString(".\n")
	return b.String(), nil
}

func (c *Controller) cmdAsk(ctx context.Context, cmd, args string) (string, error) {
	figure := cmd != "ask"
	usageLine := cmd + ` N "question"`

	if !c.AIEnabled() {
		return "", ErrAIDisabled
	}
	n, rest, err := leadingNumber(args)
	if err != nil {
		return "", usage(usageLine, err)
	}
	question := strings.TrimSpace(rest)
	if m := quotedArg.FindStringSubmatch(rest); m != nil {
		question = strings.TrimSpace(m[1])
	}
	if question == "" {
		return "", usage(usageLine, errors.New("missing question"))
	}

	answer, err := c.Ask(ctx, n, question, figure)
	if err != nil {
		return "", err
	}
	title := "answer"
	if figure {
		title = "figure answer"
	}
	return section(fmt.Sprintf("%s for [%d]", title, n), answer), nil
}

func (c *Controller) cmdSummarize(ctx context.Context, args string) (string, error) {
	if !c.AIEnabled() {
		return "", ErrAIDisabled
	}
	n, rest, err := leadingNumber(args)
	if err != nil {
		return "", usage("summarize N [style]", err)
	}
	style, err := ai.SummaryStyle(rest)
	if err != nil {
		return "", err
	}
	text, err := c.Summarize(ctx, n, style)
	if err != nil {
		return "", err
	}
	return section(fmt.Sprintf("summary of [%d] (%s)", n, style), text), nil
}

func (c *Controller) cmdExtract(ctx context.Context, args string) (string, error) {
	usageLine := "extract N <" + strings.Join(ai.ExtractionKeys(), "|") + ">"
	if !c.AIEnabled() {
		return "", ErrAIDisabled
	}
	n, rest, err := leadingNumber(args)
	if err != nil {
		return "", usage(usageLine, err)
	}
	if strings.TrimSpace(rest) == "" {
		return "", usage(usageLine, errors.New("missing extraction type"))
	}
	text, err := c.Extract(ctx, n, rest)
	if err != nil {
		return "", err
	}
	return section(fmt.Sprintf("%s extracted from [%d]", strings.ToLower(strings.TrimSpace(rest)), n), text), nil
}

func (c *Controller) cmdCompare(ctx context.Context, args string) (string, error) {
	usageLine := "compare N1,N2[,...] [" + strings.Join(ai.ComparisonTypes(), "|") + "]"
	if !c.AIEnabled() {
		return "", ErrAIDisabled
	}
	nums, kind, err := parseCompareArgs(args)
	if err != nil {
		return "", usage(usageLine, err)
	}
	kind, err = ai.ComparisonType(kind)
	if err != nil {
		return "", err
	}
	text, err := c.Compare(ctx, nums, kind)
	if err != nil {
		return "", err
	}
	return section(fmt.Sprintf("%s comparison of %s", kind, joinInts(nums)), text), nil
}

func (c *Controller) cmdRelated(ctx context.Context, args string) (string, error) {
	if !c.RelatedEnabled() {
		return "", ErrRelatedDisabled
	}
	n, _, err := leadingNumber(args)
	if err != nil {
		return "", usage("related N", err)
	}
	results, err := c.Related(ctx, n)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- Related work for [%d] ---\n", n)
	related.FormatResults(&b, results, c.width)
	return b.String(), nil
}

func (c *Controller) cmdCite(args string) (string, error) {
	n, rest, err := leadingNumber(args)
	if err != nil {
		return "", usage("cite N ["+strings.Join(cite.Styles(), "|")+"]", err)
	}
	style := strings.ToLower(strings.TrimSpace(rest))
	if style == "" {
		style = string(cite.DefaultStyle)
	}
	text, err := c.Cite(n, style)
	if err != nil {
		return "", err
	}
	return section(fmt.Sprintf("citation for [%d] (%s)", n, style), text), nil
}

func (c *Controller) cmdSet(args string) (string, error) {
	const usageLine = "set max <n> | set sort <field> [order] | set model <name>"

	setting, value := splitCommand(args)
	if value == "" {
		return "", usage(usageLine, errors.New("missing value"))
	}
	switch setting {
	case "max":
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", usage(usageLine, fmt.Errorf("invalid number %q", value))
		}
		return fmt.Sprintf("[*] Max results set to %d.\n", c.SetMaxResults(n)), nil
	case "sort":
		fields := strings.Fields(value)
		order := ""
		if len(fields) > 1 {
			order = fields[1]
		}
		if err := c.SetSort(fields[0], order); err != nil {
			return "", err
		}
		return fmt.Sprintf("[*] Sort set to %s/%s.\n", c.params.SortBy, c.params.SortOrder), nil
	case "model":
		if err := c.SetModel(value); err != nil {
			return "", err
		}
		return fmt.Sprintf("[*] Model set to %s.\n", c.model), nil
	}
	return "", types.NewError(types.KindNotFound, "set", fmt.Errorf("unknown setting %q (use max, sort or model)", setting))
}

func (c *Controller) cmdShow(ctx context.Context, args string) (string, error) {
	var b strings.Builder
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "downloads":
		fmt.Fprintln(&b, "\n--- Downloaded PDFs (current session) ---")
		list := c.Downloads()
		if len(list) == 0 {
			fmt.Fprintln(&b, "  No PDFs downloaded yet.")
		}
		for _, d := range list {
			status, uploaded := "[OK]", "[Not Uploaded]"
			if !d.Exists {
				status = "[Missing!]"
			}
			if d.Uploaded {
				uploaded = "[Uploaded]"
			}
			fmt.Fprintf(&b, "  [%d]: %s %s %s\n", d.Number, d.Path, status, uploaded)
		}
	case "model":
		fmt.Fprintf(&b, "[*] Model: %s\n", c.model)
		fmt.Fprintf(&b, "[*] AI commands: %s\n", enabled(c.AIEnabled()))
		fmt.Fprintf(&b, "[*] Related-work search: %s\n", enabled(c.RelatedEnabled()))
	case "library":
		if c.library == nil {
			return "", types.NewError(types.KindNotFound, "show library", errors.New("library is not configured"))
		}
		entries, err := c.library.List(ctx, libraryListLimit)
		if err != nil {
			return "", err
		}
		library.FormatEntries(&b, entries)
	default:
		return "", types.NewError(types.KindNotFound, "show",
			fmt.Errorf("unknown show target %q (use downloads, model or library)", args))
	}
	return b.String(), nil
}

// Help returns the command reference.
func Help() string {
	return `
Commands:
  query <text>              Search arXiv (alias: q). Starts numbering at 1.
  query --start N <text>    Search from offset N; numbering starts at N+1.
  next                      Fetch the next page of results (aliases: n, next-page).
  download N[,M,...]        Download PDFs for result numbers (alias: d).

  # AI commands download and upload the PDF as needed:
  ask N "question"          Ask a question about paper N.
  ask-figure N "question"   Ask about figures and tables in paper N (aliases: ask_fig, ask-fig).
  summarize N [style]       Summarize paper N (alias: sum). Styles: ` + strings.Join(ai.SummaryStyles(), ", ") + `.
  extract N <type>          Extract structured JSON (alias: ext). Types: ` + strings.Join(ai.ExtractionKeys(), ", ") + `.
  compare N1,N2[,...] [t]   Compare papers. Types: ` + strings.Join(ai.ComparisonTypes(), ", ") + `.

  # Other commands:
  related N                 Find related work via Google Scholar (alias: rel).
  cite N [format]           Citation for paper N. Formats: ` + strings.Join(cite.Styles(), ", ") + `.
  set max <n>               Results per page (1-2000).
  set sort <field> [order]  Sort by relevance, lastUpdatedDate or submittedDate; ascending or descending.
  set model <name>          Select the AI model.
  show downloads            List PDFs downloaded this session.
  show model                Show the AI model and which services are enabled.
  show library              List papers recorded in the library.
  help                      Show this message (alias: ?).
  quit                      Exit (alias: exit).
`
}

// splitCommand returns the lowercased first word of line and the rest.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	cmd, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

// leadingNumber parses the display number at the start of args.
func leadingNumber(args string) (int, string, error) {
	first, rest := splitCommand(args)
	if first == "" {
		return 0, "", errors.New("missing result number")
	}
	n, err := strconv.Atoi(first)
	if err != nil {
		return 0, "", fmt.Errorf("invalid result number %q", first)
	}
	return n, rest, nil
}

// parseNumbers parses "3,7,15" or "3 7 15".
func parseNumbers(args string) ([]int, error) {
	fields := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return nil, errors.New("missing result numbers")
	}
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid result number %q", f)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

// parseCompareArgs accepts "1,2,3 methods", "1,2,3,methods" and "1 2 3".
func parseCompareArgs(args string) ([]int, string, error) {
	fields := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return nil, "", errors.New("missing result numbers")
	}
	kind := ""
	if _, err := strconv.Atoi(fields[len(fields)-1]); err != nil {
		kind = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, "", fmt.Errorf("invalid result number %q", f)
		}
		nums = append(nums, n)
	}
	return nums, kind, nil
}

func usage(line string, err error) error {
	return types.NewError(types.KindNotFound, "usage", fmt.Errorf("%v; usage: %s", err, line))
}

func section(title, body string) string {
	return fmt.Sprintf("\n--- %s ---\n%s\n%s\n", title, strings.TrimRight(body, "\n"), strings.Repeat("-", len(title)+8))
}

func enabled(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled (no API key)"
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
