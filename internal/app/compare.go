package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"synrec/internal/backend"
	config "synrec/internal/config"
	ilogger "synrec/internal/logger"
	"synrec/internal/suggest"
)

type compareResult struct {
	Service  string   `json:"service"`
	Synonyms []string `json:"synonyms,omitempty"`
	Error    string   `json:"error,omitempty"`

	err error
}

func newCompareCommand(opts *cliOptions) *cobra.Command {
	var services []string
	local := &cliOptions{}
	cmd := &cobra.Command{
		Use:           "compare <word>",
		Short:         "Query several services concurrently and show their answers side by side",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts.ConfigFile)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
				return exitError{code: exitFailure}
			}
			if local.AbbrevFile == "" {
				local.AbbrevFile = settings.AbbrevFile
			}
			cfg := &config.Config{
				Word:       args[0],
				Text:       local.Text,
				Model:      local.Model,
				Sentence:   local.Sentence,
				ContextLen: local.ContextLen,
				Abbrev:     local.Abbrev,
				AbbrevFile: local.AbbrevFile,
				Params:     local.Params,
				Top:        local.Top,
				JSON:       local.JSON,
			}
			if len(services) > 0 {
				cfg.Service, cfg.Fallback = services[0], services[1:]
			}

			code := runWithLogger(cmd.ErrOrStderr(), settings.KeepLog, func() int {
				return runCompare(cmd.Context(), cfg, settings, cmd.OutOrStdout())
			})
			return exitWith(code)
		},
	}

	fs := cmd.Flags()
	fs.StringSliceVar(&services, "services", nil, "Services to compare (default: every registered service)")
	fs.StringVarP(&local.Model, "model", "m", "", "Model override for services that accept one")
	addContextFlags(fs, local)
	fs.StringToStringVarP(&local.Params, "param", "p", nil, "Extra backend parameter key=value (repeatable)")
	fs.IntVar(&local.Top, "top", 0, "Keep at most N synonyms per service (0 keeps all)")
	fs.BoolVar(&local.JSON, "json", false, "Print the results as JSON")
	return cmd
}

// runCompare gives every service its own Manager, so the queries share no
// mutable state. Concurrency is bounded by max_parallel_workers.
func runCompare(ctx context.Context, cfg *config.Config, settings config.Settings, stdout io.Writer) int {
	factories := newFactoriesFn(settings)
	services := cfg.Services()
	if len(services) == 0 {
		for _, info := range listServices(factories) {
			services = append(services, info.Service)
		}
	}
	if len(services) == 0 {
		ilogger.LogError(errNoServices.Error())
		return exitUsage
	}

	params, _, err := prepareParams(cfg)
	if err != nil {
		ilogger.LogError(err.Error())
		return exitFailure
	}

	results := make([]compareResult, len(services))
	g, gctx := errgroup.WithContext(ctx)
	if settings.MaxParallelWorkers > 0 {
		g.SetLimit(settings.MaxParallelWorkers)
	}
	for i, svc := range services {
		i, svc := i, svc
		g.Go(func() error {
			res, err := querySingle(gctx, factories, svc, modelFor(cfg, settings, svc), cfg.Word, params)
			results[i] = compareResult{Service: svc, err: err}
			if err != nil {
				results[i].Error = err.Error()
				ilogger.LogWarn(fmt.Sprintf("compare: %v", err))
				return nil
			}
			results[i].Synonyms = suggest.Clean(cfg.Word, res.Synonyms, cfg.Top)
			return nil
		})
	}
	_ = g.Wait()

	if cfg.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			ilogger.LogError(fmt.Sprintf("encode results: %v", err))
			return exitFailure
		}
	} else {
		renderCompare(stdout, results)
	}

	var firstErr error
	for _, r := range results {
		if r.err == nil {
			return exitOK
		}
		if firstErr == nil {
			firstErr = r.err
		}
	}
	return exitCodeFor(firstErr)
}

func querySingle(ctx context.Context, factories suggest.Factories, service, model, word string, params backend.Params) (backend.Result, error) {
	f, ok := factories.For(service)
	if !ok {
		return backend.Result{}, factories.Unsupported(service)
	}
	m, err := suggest.NewManager(ctx, f, service, model)
	if err != nil {
		return backend.Result{}, err
	}
	// Backends only read params.
	return m.Suggest(ctx, word, params)
}

func renderCompare(w io.Writer, results []compareResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Service", "Synonyms", "Error"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, r := range results {
		errText := ""
		if r.err != nil {
			errText = r.Error
		}
		table.Append([]string{r.Service, joinOrDash(r.Synonyms), errText})
	}
	table.Render()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
