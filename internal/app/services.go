package app

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"synrec/internal/backend"
	"synrec/internal/suggest"
)

type serviceInfo struct {
	Service      string         `json:"service"`
	Family       backend.Family `json:"family"`
	AcceptsModel bool           `json:"accepts_model"`
	Description  string         `json:"description"`
}

func newServicesCommand(opts *cliOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:           "services",
		Short:         "List the registered synonym services",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts.ConfigFile)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
				return exitError{code: exitFailure}
			}
			infos := listServices(newFactoriesFn(settings))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(infos); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
					return exitError{code: exitFailure}
				}
				return nil
			}
			renderServices(cmd.OutOrStdout(), infos)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON")
	return cmd
}

// listServices returns every registered service, API family first.
func listServices(factories suggest.Factories) []serviceInfo {
	var infos []serviceInfo
	for _, f := range []*backend.Factory{factories.API, factories.Model} {
		if f == nil {
			continue
		}
		reg := f.Registry()
		for _, name := range reg.Names() {
			entry, err := reg.Resolve(name)
			if err != nil {
				continue
			}
			infos = append(infos, serviceInfo{
				Service:      name,
				Family:       reg.Family(),
				AcceptsModel: entry.AcceptsModel,
				Description:  entry.Description,
			})
		}
	}
	return infos
}

func renderServices(w io.Writer, infos []serviceInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Service", "Family", "Model override", "Description"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, info := range infos {
		override := "no"
		if info.AcceptsModel {
			override = "yes"
		}
		table.Append([]string{info.Service, string(info.Family), override, info.Description})
	}
	table.Render()
}
