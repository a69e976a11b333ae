// Package app wires configuration, logging and the engine into the linkage
// command tree.
package app

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gcbaptista/go-linkage-engine/config"
	"github.com/gcbaptista/go-linkage-engine/internal/logging"
)

// App holds the state shared by every command.
type App struct {
	version string
	commit  string
	date    string

	viper      *viper.Viper
	configFile string
	envFiles   []string
	settings   *config.Settings
	logger     *zerolog.Logger
}

// New creates the application with build information.
func New(version, commit, date string) *App {
	return &App{
		version: version,
		commit:  commit,
		date:    date,
		viper:   config.NewViper(),
		logger:  logging.Default(),
	}
}

// Execute runs the command line with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.createRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Settings returns the loaded settings. Only valid inside a command.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// Logger returns the configured logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

func (a *App) createRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "linkage",
		Short:   "Research-entity linkage and sighting deconfliction",
		Version: a.version,
		Long: `linkage resolves organization names against an entity roster, scores
candidate research, award and project records for credibility, ranks
historical awards against forecast opportunities, and matches sightings
with mundane confound reports.

Configuration is read from linkage.yaml (or --config), .env files and
LINKAGE_* environment variables, in increasing order of precedence.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./linkage.yaml)")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "env files to load (default .env.local, .env)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "log format: json, console, auto")
	flags.String("output-dir", "", "directory for output tables")
	flags.Int("workers", 0, "maximum parallel workers")
	a.bindFlag(root, "log.level", "log-level")
	a.bindFlag(root, "log.format", "log-format")
	a.bindFlag(root, "output.dir", "output-dir")
	a.bindFlag(root, "pipeline.workers", "workers")

	root.SetVersionTemplate("linkage {{.Version}}\n")

	root.AddCommand(a.NewRunCommand())
	root.AddCommand(a.NewServeCommand())
	root.AddCommand(a.NewResolveCommand())
	root.AddCommand(a.NewValidateCommand())
	root.AddCommand(a.NewVersionCommand())
	return root
}

// bindFlag binds a persistent flag to a settings key. Only flags that were
// set on the command line override the other sources.
func (a *App) bindFlag(cmd *cobra.Command, key, flag string) {
	if err := a.viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// setupCommand loads configuration and the logger before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	loaded := config.LoadEnvFiles(a.envFiles...)

	if err := config.ReadConfigFile(a.viper, a.configFile); err != nil {
		return err
	}
	settings, err := config.Load(a.viper)
	if err != nil {
		return err
	}
	a.settings = settings

	logCfg := logging.DefaultConfig()
	logCfg.Level = settings.Log.Level
	logCfg.Format = settings.Log.Format
	logging.Configure(logCfg)
	a.logger = logging.Default()

	a.logger.Debug().
		Str("command", cmd.Name()).
		Str("config_file", a.viper.ConfigFileUsed()).
		Strs("env_files", loaded).
		Msg("Configuration loaded")
	return nil
}

// ExitOnError prints err to stderr and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
