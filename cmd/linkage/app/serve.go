package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-linkage-engine/api"
	"github.com/gcbaptista/go-linkage-engine/internal/engine"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func (a *App) NewServeCommand() *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve run results over HTTP",
		Long: `Serve starts the results API. The snapshot of the last run in the output
directory is loaded at startup; new runs can be started with POST /runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng := engine.NewEngine(a.settings)
			defer eng.Stop()

			if runOnStart {
				jobID, err := eng.StartRunAsync("startup")
				if err != nil {
					return err
				}
				a.logger.Info().Str("job_id", jobID).Msg("Startup run scheduled")
			}

			if a.logger.GetLevel() > zerolog.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			router.Use(
				gin.Recovery(),
				api.RequestIDMiddleware(),
				api.RequestLoggerMiddleware(a.logger),
				api.CORSMiddleware(),
				api.RequestSizeLimitMiddleware(a.settings.Server.MaxBodyBytes),
			)
			api.SetupRoutes(router, eng)

			return a.listen(cmd.Context(), router)
		},
	}

	cmd.Flags().Int("port", 0, "port to listen on")
	if err := a.viper.BindPFlag("server.port", cmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}
	cmd.Flags().BoolVar(&runOnStart, "run", false, "start a pipeline run when the server starts")
	return cmd
}

func (a *App) listen(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(a.settings.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("Starting results server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("Shutting down results server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
