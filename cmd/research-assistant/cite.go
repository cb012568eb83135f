package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/cite"
	"github.com/pdiddy/research-assistant/internal/search"
)

var citeCmd = &cobra.Command{
	Use:   "cite ID...",
	Short: "Look up arXiv identifiers and print citations",
	Long: `Cite fetches the given arXiv identifiers (e.g. 2303.08774 or
2303.08774v2) from the arXiv index and prints one citation per paper in
the requested style. No search session is needed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		cfg := loadConfig()
		client := search.NewArxivClient(&http.Client{Timeout: cfg.Search.Timeout}, cfg.Search)

		papers, err := client.Lookup(cmd.Context(), args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i := range papers {
			text, err := cite.Format(&papers[i], format)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, text)
			if i < len(papers)-1 {
				fmt.Fprintln(out)
			}
		}
		return nil
	},
}

func init() {
	citeCmd.Flags().String("format", string(cite.DefaultStyle), "citation style: "+optionList("cite"))
	rootCmd.AddCommand(citeCmd)
}
