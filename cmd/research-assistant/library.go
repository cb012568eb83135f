// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/internal/library"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the record of downloaded papers",
	Long: `Library manages the SQLite record of downloaded papers kept next to the
PDFs (download_dir/library.db unless library_path is set). Every download
made from the shell, search or exec commands is recorded automatically.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded papers, newest download first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withLibrary(func(s *library.Store) error {
			entries, err := s.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			library.FormatEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var librarySearchCmd = &cobra.Command{
	Use:   "search TERM...",
	Short: "Find recorded papers by title, abstract or author",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withLibrary(func(s *library.Store) error {
			entries, err := s.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			library.FormatEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print one recorded paper as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(s *library.Store) error {
			e, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(e)
		})
	},
}

var libraryImportCmd = &cobra.Command{
	Use:   "import [DIR]",
	Short: "Record PDFs already in a directory (default: download_dir)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := loadConfig().Acquisition.DownloadDir
		if len(args) == 1 {
			dir = args[0]
		}
		return withLibrary(func(s *library.Store) error {
			sum, err := s.Import(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[*] Imported %d, skipped %d (no metadata), failed %d.\n",
				sum.Imported, sum.Skipped, sum.Failed)
			return nil
		})
	},
}

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every recorded paper as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withLibrary(func(s *library.Store) error {
			return s.Export(cmd.Context(), cmd.OutOrStdout(), format)
		})
	},
}

func init() {
	libraryListCmd.Flags().Int("limit", 50, "maximum number of entries")
	librarySearchCmd.Flags().Int("limit", 50, "maximum number of entries")
	libraryExportCmd.Flags().String("format", library.FormatYAML, "output format: yaml or json")

	libraryCmd.AddCommand(libraryListCmd, librarySearchCmd, libraryShowCmd, libraryImportCmd, libraryExportCmd)
	rootCmd.AddCommand(libraryCmd)
}

func withLibrary(fn func(*library.Store) error) error {
	s, err := library.Open(loadConfig().Library)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
