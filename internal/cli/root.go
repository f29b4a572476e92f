// Package cli implements the dbus-explorer command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dbusexplorer/internal/adapter"
	"dbusexplorer/internal/codec"
	"dbusexplorer/internal/config"
	"dbusexplorer/internal/logger"
	"dbusexplorer/internal/service"
)

const (
	envPrefix = "DBUS_EXPLORER"

	colorModeNever  = "never"
	colorModeAlways = "always"
)

var supportedColorModes = []string{
	colorModeNever,
	colorModeAlways,
}

var longRootCmdDescription = `dbus-explorer walks the services on a D-Bus message bus, introspects every
object each service exposes, and presents the interfaces, methods, properties
and signals it finds, either on the command line or through a small web UI.
`

type rootOpts struct {
	cfgFile   string
	bus       string
	address   string
	debug     bool
	colorMode string
}

// App holds the state shared by all commands
type App struct {
	opts    rootOpts
	cfg     *config.Config
	cfgPath string
	out     io.Writer

	// debug is the resolved --debug flag or DBUS_EXPLORER_DEBUG
	debug bool

	// dial overrides the dialer derived from the bus settings
	dial adapter.Dialer
}

// NewApp creates an App writing command output to out
func NewApp(out io.Writer) *App {
	return &App{out: out}
}

// WithDialer makes every command use dial instead of a real bus
func (a *App) WithDialer(dial adapter.Dialer) *App {
	a.dial = dial
	return a
}

// NewRootCmd builds the command tree
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dbus-explorer",
		Short:         "Discover and browse D-Bus services and objects.",
		Long:          longRootCmdDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.opts.cfgFile, "config", "", "config file (default is searched, see docs)")
	flags.StringVar(&app.opts.bus, "bus", "", "bus to explore: system, session or address")
	flags.StringVar(&app.opts.address, "address", "", "bus address, implies --bus address")
	flags.BoolVarP(&app.opts.debug, "debug", "d", false, "turn on debug mode")
	flags.StringVar(&app.opts.colorMode, "color", colorModeAlways, fmt.Sprintf("set the log color mode, the possible values can be %v", supportedColorModes))

	rootCmd.AddCommand(
		newServeCmd(app),
		newListCmd(app),
		newDiscoverCmd(app),
		newServiceCmd(app),
		newInitConfigCmd(app),
	)
	rootCmd.DisableAutoGenTag = true

	return rootCmd
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	if err := NewRootCmd(NewApp(os.Stdout)).Execute(); err != nil {
		logrus.Errorf("dbus-explorer: %v", err)
		os.Exit(1)
	}
}

// init loads the config file, then applies environment and flag overrides
func (a *App) init(cmd *cobra.Command) error {
	var err error
	if a.opts.cfgFile != "" {
		path, expandErr := config.ExpandPath(a.opts.cfgFile)
		if expandErr != nil {
			return errors.Wrap(expandErr, "expand config path")
		}
		a.cfg, a.cfgPath, err = config.LoadFromPath(path)
	} else {
		a.cfg, a.cfgPath, err = config.Load()
	}
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind flags")
	}

	if v.IsSet("bus") {
		a.cfg.Bus.Kind = v.GetString("bus")
	}
	if v.IsSet("address") {
		a.cfg.Bus.Address = v.GetString("address")
		if !v.IsSet("bus") {
			a.cfg.Bus.Kind = string(adapter.BusAddress)
		}
	}
	if v.IsSet("addr") {
		a.cfg.Server.Addr = v.GetString("addr")
	}
	if v.IsSet("base-path") {
		a.cfg.Server.BasePath = strings.TrimSuffix(v.GetString("base-path"), "/")
	}
	if v.IsSet("color") {
		mode := v.GetString("color")
		if mode != colorModeAlways && mode != colorModeNever {
			return errors.Errorf("invalid color mode %q, supported: %v", mode, supportedColorModes)
		}
		a.cfg.Log.Color = mode == colorModeAlways
	}

	if err := a.cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	a.debug = v.GetBool("debug")
	if err := logger.Init(logger.Options{
		Level:        a.cfg.Log.Level,
		Debug:        a.debug,
		DisableColor: !a.cfg.Log.Color,
		LogToFile:    a.cfg.Log.ToFile,
		LogDir:       a.cfg.Log.Dir,
	}); err != nil {
		return err
	}

	if a.cfgPath != "" {
		logrus.Debugf("loaded config from %s", a.cfgPath)
	}
	return nil
}

func (a *App) explorer() *service.Explorer {
	dial := a.dial
	if dial == nil {
		dial = adapter.NewDialer(a.cfg.BusSettings())
	}
	parser := codec.NewIntrospectionParser(a.cfg.Discovery.QuietNamespaces)
	return service.NewExplorer(dial, parser, a.cfg.Timeouts())
}
