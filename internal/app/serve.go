package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	ilogger "synrec/internal/logger"
	"synrec/internal/server"
	"synrec/internal/suggest"
)

var serveFn = func(ctx context.Context, srv *server.Server, addr string) error {
	return srv.Run(ctx, addr)
}

func newServeCommand(opts *cliOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve suggestions over HTTP",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts.ConfigFile)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
				return exitError{code: exitFailure}
			}
			if addr == "" {
				addr = settings.Server.Addr
			}

			code := runWithLogger(cmd.ErrOrStderr(), settings.KeepLog, func() int {
				ctx := cmd.Context()
				factories := newFactoriesFn(settings)
				s, err := newSuggesterFn(ctx, factories, suggest.DefaultsFromSettings(settings))
				if err != nil {
					ilogger.LogError(err.Error())
					return exitCodeFor(err)
				}

				table, err := loadTableFn(settings.AbbrevFile)
				switch {
				case err == nil:
				case errors.Is(err, os.ErrNotExist):
					ilogger.LogInfo("abbreviation table not found; expansion disabled")
					table = nil
				default:
					ilogger.LogError(err.Error())
					return exitFailure
				}

				gin.SetMode(gin.ReleaseMode)
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] serving on %s\n", ilogger.AppName, addr)
				if err := serveFn(ctx, server.New(s, table), addr); err != nil {
					ilogger.LogError(err.Error())
					return exitFailure
				}
				return exitOK
			})
			return exitWith(code)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr setting)")
	return cmd
}

