package cmd

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskdeck/internal/api"
	"github.com/twiced-technology-gmbh/taskdeck/internal/clierr"
	"github.com/twiced-technology-gmbh/taskdeck/internal/config"
	"github.com/twiced-technology-gmbh/taskdeck/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over a REST API",
	Long: `Exposes the board's backend as a REST API with /tasks and
/task_dependencies resources, so other machines can use it with the rest
backend. Requests must carry the key from server.api_key_env when that
variable is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Backend.Kind == config.BackendREST {
		return clierr.New(clierr.InvalidInput, "serve needs a local backend; this board uses the rest backend")
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	if !flagVerbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close() //nolint:errcheck // server is exiting

	logger := log.GetLogger()
	key := cfg.ServerAPIKey()
	if key == "" {
		logger.Warn("server.api_key_env is unset or empty: the API accepts unauthenticated requests")
	}

	srv := api.NewServer(b, api.WithAPIKey(key), api.WithLogger(logger))
	logger.WithField("addr", addr).WithField("backend", cfg.Backend.Kind).Info("serving board")
	return srv.Run(ctx, addr)
}
