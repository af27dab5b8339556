package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"synrec/internal/abbrev"
	config "synrec/internal/config"
	ilogger "synrec/internal/logger"
)

var fetchTableFn = abbrev.Fetch

func newAbbrevCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abbrev",
		Short: "Manage and apply the medical abbreviation table",
	}
	cmd.AddCommand(newAbbrevFetchCommand(opts), newAbbrevExpandCommand(opts))
	return cmd
}

func newAbbrevFetchCommand(opts *cliOptions) *cobra.Command {
	var url, out string
	cmd := &cobra.Command{
		Use:           "fetch",
		Short:         "Download the abbreviation table and save it",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts.ConfigFile)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
				return exitError{code: exitFailure}
			}
			if out == "" {
				out = settings.AbbrevFile
			}

			code := runWithLogger(cmd.ErrOrStderr(), settings.KeepLog, func() int {
				path, err := config.ExpandHome(out)
				if err != nil {
					ilogger.LogError(fmt.Sprintf("resolve output path: %v", err))
					return exitFailure
				}
				table, err := fetchTableFn(cmd.Context(), settings.HTTPClient(), url)
				if err != nil {
					ilogger.LogError(err.Error())
					return exitFailure
				}
				if err := table.Save(path); err != nil {
					ilogger.LogError(err.Error())
					return exitFailure
				}
				ilogger.LogInfo(fmt.Sprintf("saved %d abbreviations from %s", table.Len(), url))
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d abbreviations to %s\n", table.Len(), path)
				return exitOK
			})
			return exitWith(code)
		},
	}
	cmd.Flags().StringVar(&url, "url", abbrev.DefaultSourceURL, "Page holding the abbreviation table")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: abbrev_file setting)")
	return cmd
}

func newAbbrevExpandCommand(opts *cliOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:           "expand <text>...",
		Short:         "Swap abbreviations and full forms in text",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts.ConfigFile)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
				return exitError{code: exitFailure}
			}
			if file == "" {
				file = settings.AbbrevFile
			}
			table, err := loadTableFn(file)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
				return exitError{code: exitFailure}
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Replace(strings.Join(args, " ")))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "abbrev-file", "", "Abbreviation table (default: abbrev_file setting)")
	return cmd
}
