// Package app implements the synrec command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"synrec/internal/backend"
	config "synrec/internal/config"
	ilogger "synrec/internal/logger"
)

const (
	exitOK           = 0
	exitFailure      = 1
	exitUsage        = 2
	exitConstruction = 3
	exitInvocation   = 4
)

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

func exitWith(code int) error {
	if code == exitOK {
		return nil
	}
	return exitError{code: code}
}

// exitCodeFor maps an error to the process exit status.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case backend.IsUnsupported(err), errors.Is(err, backend.ErrEmptyWord), errors.Is(err, errUsage):
		return exitUsage
	case backend.IsConstruction(err):
		return exitConstruction
	case backend.IsInvocation(err):
		return exitInvocation
	default:
		return exitFailure
	}
}

var errUsage = errors.New("invalid usage")

type cliOptions struct {
	ConfigFile string
	Version    bool

	Service    string
	Model      string
	Text       string
	Sentence   bool
	ContextLen int
	Abbrev     bool
	AbbrevFile string
	Fallback   []string
	Params     map[string]string
	Top        int
	JSON       bool
}

var exitFn = os.Exit

// Run is the program entrypoint for cmd/synrec/main.go.
func Run() {
	exitFn(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return exitUsage
	}
	return exitOK
}

func newRootCommand() *cobra.Command {
	name := ilogger.AppName
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s [flags] <word>", name),
		Short:         "Suggest synonyms for a word, optionally in context",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", name, version)
				return nil
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "ERROR: target word required")
				fmt.Fprintf(cmd.ErrOrStderr(), "Usage: %s [flags] <word>\n", name)
				return exitError{code: exitUsage}
			}

			settings, err := loadSettings(opts.ConfigFile)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
				return exitError{code: exitFailure}
			}

			code := runWithLogger(cmd.ErrOrStderr(), settings.KeepLog, func() int {
				cfg, err := buildConfig(cmd, args, opts, settings)
				if err != nil {
					ilogger.LogError(err.Error())
					return exitCodeFor(err)
				}
				ilogger.LogInfo(fmt.Sprintf("Parsed args: word=%q services=%v text_len=%d", cfg.Word, cfg.Services(), len(cfg.Text)))
				return runSuggest(cmd.Context(), cfg, settings, cmd.OutOrStdout())
			})
			return exitWith(code)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.synrec/config.*)")
	addRootFlags(cmd.Flags(), opts)

	cmd.AddCommand(
		newVersionCommand(name),
		newCleanupCommand(),
		newServicesCommand(opts),
		newCompareCommand(opts),
		newServeCommand(opts),
		newAbbrevCommand(opts),
	)
	return cmd
}

func addRootFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.BoolVarP(&opts.Version, "version", "v", false, "Print version and exit")

	fs.StringVarP(&opts.Service, "service", "s", "", "Synonym service (default: default_model_service setting)")
	fs.StringVarP(&opts.Model, "model", "m", "", "Model override for services that accept one")
	fs.StringSliceVar(&opts.Fallback, "fallback", nil, "Services to try, in order, when the primary fails")
	addContextFlags(fs, opts)
	fs.StringToStringVarP(&opts.Params, "param", "p", nil, "Extra backend parameter key=value (repeatable)")
	fs.IntVar(&opts.Top, "top", 0, "Keep at most N synonyms (0 keeps all)")
	fs.BoolVar(&opts.JSON, "json", false, "Print the result as JSON")
}

func addContextFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVarP(&opts.Text, "text", "t", "", "Text the word appears in")
	fs.BoolVar(&opts.Sentence, "sentence", true, "Measure context in sentences instead of words")
	fs.IntVar(&opts.ContextLen, "context-len", 1, "Number of sentences or words kept on each side of the word")
	fs.BoolVar(&opts.Abbrev, "abbrev", false, "Expand abbreviations in the text first")
	fs.StringVar(&opts.AbbrevFile, "abbrev-file", "", "Abbreviation table (default: abbrev_file setting)")
}

func loadSettings(configFile string) (config.Settings, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return config.Settings{}, fmt.Errorf("load config: %w", err)
	}
	return config.LoadSettings(v), nil
}

func buildConfig(cmd *cobra.Command, args []string, opts *cliOptions, settings config.Settings) (*config.Config, error) {
	if cmd.Flags().Changed("service") && opts.Service == "" {
		return nil, fmt.Errorf("%w: --service flag requires a value", errUsage)
	}
	if cmd.Flags().Changed("model") && opts.Model == "" {
		return nil, fmt.Errorf("%w: --model flag requires a value", errUsage)
	}
	if opts.ContextLen < 0 {
		return nil, fmt.Errorf("%w: --context-len must not be negative", errUsage)
	}
	if opts.Top < 0 {
		return nil, fmt.Errorf("%w: --top must not be negative", errUsage)
	}

	service := opts.Service
	if service == "" {
		service = settings.DefaultModelService
	}
	abbrevFile := opts.AbbrevFile
	if abbrevFile == "" {
		abbrevFile = settings.AbbrevFile
	}

	return &config.Config{
		Word:       args[0],
		Text:       opts.Text,
		Service:    service,
		Model:      opts.Model,
		Sentence:   opts.Sentence,
		ContextLen: opts.ContextLen,
		Abbrev:     opts.Abbrev,
		AbbrevFile: abbrevFile,
		Fallback:   opts.Fallback,
		Params:     opts.Params,
		Top:        opts.Top,
		JSON:       opts.JSON,
	}, nil
}

func newVersionCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", name, version)
			return nil
		},
	}
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "cleanup",
		Short:         "Clean up old logs and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitWith(runCleanupMode(cmd.OutOrStdout(), cmd.ErrOrStderr()))
		},
	}
}
