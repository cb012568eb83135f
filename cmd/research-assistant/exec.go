// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/session"
)

var execCmd = &cobra.Command{
	Use:   "exec FILE",
	Short: "Run shell commands from a file",
	Long: `Exec runs shell commands from FILE, one per line, in a single session.
Blank lines and lines starting with # are skipped. Use "-" to read from
standard input. A failing command is reported and the script continues;
exec exits non-zero if any command failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().Bool("echo", true, "print each command before running it")
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		r = f
	}
	echo, _ := cmd.Flags().GetBool("echo")

	a, err := newApp(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	failed, err := runScript(cmd.Context(), a.ctl, r, cmd.OutOrStdout(), echo)
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d commands failed", failed)
	}
	return nil
}

// dispatcher runs one shell command line.
type dispatcher interface {
	Dispatch(ctx context.Context, line string) (string, error)
}

// runScript dispatches each command in r and returns how many failed.
// A quit command stops the script.
func runScript(ctx context.Context, d dispatcher, r io.Reader, w io.Writer, echo bool) (int, error) {
	failed := 0
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if echo {
			fmt.Fprintf(w, "> %s\n", line)
		}
		out, err := d.Dispatch(ctx, line)
		fmt.Fprint(w, out)
		if errors.Is(err, session.ErrQuit) {
			return failed, nil
		}
		if err != nil {
			report(w, fmt.Errorf("line %d: %w", lineNo, err))
			failed++
		}
		if ctx.Err() != nil {
			return failed, ctx.Err()
		}
	}
	if err := sc.Err(); err != nil {
		return failed, fmt.Errorf("reading script: %w", err)
	}
	return failed, nil
}
