package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/nikogura/plclient/pkg/client"
	"github.com/nikogura/plclient/pkg/config"
	"github.com/nikogura/plclient/pkg/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var logFormat string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "plclient",
	Short: "Look up powerlifters and their competition history",
	Long: `plclient queries OpenPowerlifting for lifter identifiers and full meet histories.

Lifter data is fetched as the site's CSV export and decoded into typed
meet results: attempts, placings, weight classes, scores and meet details.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.plclient/config.json)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (default from config)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// session is what every network command needs: a configured client and a
// context that ends on SIGINT or after the configured timeout.
type session struct {
	client *client.Client
	ctx    context.Context
	cancel context.CancelFunc
}

// close releases the client and the context.
func (s *session) close() {
	s.cancel()
	_ = s.client.Close()
}

func newSession(cmd *cobra.Command) (s *session, err error) {
	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return s, err
	}

	level := cfg.Log.Level
	if getVerbose() {
		level = "debug"
	}
	format := cfg.Log.Format
	if logFormat != "" {
		format = logFormat
	}

	err = logging.Setup(level, format, cmd.ErrOrStderr())
	if err != nil {
		err = errors.Wrap(err, "failed to set up logging")
		return s, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	cancel := stop

	timeout, _ := cfg.Timeout()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
		cancel = func() {
			cancelTimeout()
			stop()
		}
	}

	s = &session{
		client: client.NewClient(cfg.ClientOptions()),
		ctx:    ctx,
		cancel: cancel,
	}
	return s, err
}
