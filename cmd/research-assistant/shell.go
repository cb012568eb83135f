// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const promptQueryLen = 30

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive research session",
	Long: `Shell starts an interactive session. Run a query, page through the
results, then refer to papers by their result number to download, ask
questions, summarize, extract, compare, cite or find related work.

Type "help" inside the shell for the command list. Ctrl-C cancels the
running command; Ctrl-D or "quit" exits.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile(),
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("starting shell: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	a, err := newApp(cmd.Context(), out)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(out, "\n--- arXiv research assistant ---")
	fmt.Fprint(out, session.Help())
	if !a.ctl.AIEnabled() {
		fmt.Fprintln(out, "[!] Gemini API key missing. AI commands are disabled.")
	}
	if !a.ctl.RelatedEnabled() {
		fmt.Fprintln(out, "[!] Serper API key missing. 'related' is disabled.")
	}

	for {
		rl.SetPrompt(prompt(a.ctl))
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if isBareQuery(line) {
			line, err = askQuery(rl)
			if err != nil || line == "" {
				continue
			}
		}

		if quit := runLine(cmd.Context(), a, out, line); quit {
			return nil
		}
	}
}

// runLine dispatches one command with a context that Ctrl-C cancels and
// prints its output or error. It reports whether the session should end.
func runLine(parent context.Context, a *app, w io.Writer, line string) bool {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	a.log.Debug("command", "line", line)
	out, err := a.ctl.Dispatch(ctx, line)
	if out != "" {
		fmt.Fprint(w, out)
	}
	if errors.Is(err, session.ErrQuit) {
		return true
	}
	if err != nil {
		report(w, err)
	}
	return false
}

// report prints err as a single diagnostic line.
func report(w io.Writer, err error) {
	switch {
	case errors.Is(err, types.ErrEndOfResults):
		fmt.Fprintln(w, "[-] Already at the end of results.")
	case errors.Is(err, types.ErrNoResults):
		fmt.Fprintln(w, "[-] No related papers found.")
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "[!] Cancelled.")
	default:
		fmt.Fprintf(w, "[!] %v\n", err)
	}
}

// isBareQuery reports whether line is a query command with no text, in
// which case the shell prompts for the query.
func isBareQuery(line string) bool {
	l := strings.ToLower(line)
	return l == "q" || l == "query"
}

func askQuery(rl *readline.Instance) (string, error) {
	rl.SetPrompt("Enter new search query: ")
	text, err := rl.Readline()
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		fmt.Fprintln(rl.Stdout(), "[!] Query cannot be empty.")
		return "", nil
	}
	return "query " + text, nil
}

func prompt(c *session.Controller) string {
	p := c.Params()
	var b strings.Builder
	b.WriteString("\n[")
	if p.Query != "" {
		fmt.Fprintf(&b, "Query: '%s' | ", truncate(p.Query, promptQueryLen))
	}
	fmt.Fprintf(&b, "Page: %d | Max: %d | Sort: %s/%s", c.PageNumber(), p.MaxResults, p.SortBy, p.SortOrder)
	if c.AIEnabled() {
		fmt.Fprintf(&b, " | Model: %s", c.Model())
	}
	b.WriteString("] > ")
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".config", "research-assistant")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func completer() *readline.PrefixCompleter {
	items := func(names []string) []readline.PrefixCompleterInterface {
		out := make([]readline.PrefixCompleterInterface, len(names))
		for i, n := range names {
			out[i] = readline.PcItem(n)
		}
		return out
	}

	var sortFields []readline.PrefixCompleterInterface
	for _, f := range types.SortFields {
		var orders []readline.PrefixCompleterInterface
		for _, o := range types.SortOrders {
			orders = append(orders, readline.PcItem(string(o)))
		}
		sortFields = append(sortFields, readline.PcItem(string(f), orders...))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("query"),
		readline.PcItem("next"),
		readline.PcItem("download"),
		readline.PcItem("ask"),
		readline.PcItem("ask-figure"),
		readline.PcItem("summarize"),
		readline.PcItem("extract"),
		readline.PcItem("compare"),
		readline.PcItem("related"),
		readline.PcItem("cite"),
		readline.PcItem("set",
			readline.PcItem("max"),
			readline.PcItem("sort", sortFields...),
			readline.PcItem("model"),
		),
		readline.PcItem("show", items([]string{"downloads", "model", "library"})...),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
