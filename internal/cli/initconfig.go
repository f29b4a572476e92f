package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"dbusexplorer/internal/config"
)

func newInitConfigCmd(app *App) *cobra.Command {
	var force bool

	initConfigCmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a config file with the default settings",
		Long: `init-config writes the default configuration to the path given by --config,
or to $XDG_CONFIG_HOME/dbus-explorer/config.yaml when no path is given.`,
		Args: cobra.NoArgs,
		// The file may not exist yet, so the root config loading is skipped
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.initConfig(force)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "wrote default config to %s\n", path)
			return nil
		},
	}

	initConfigCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return initConfigCmd
}

func (a *App) initConfig(force bool) (string, error) {
	path := config.DefaultConfigPath()
	if a.opts.cfgFile != "" {
		expanded, err := config.ExpandPath(a.opts.cfgFile)
		if err != nil {
			return "", errors.Wrap(err, "expand config path")
		}
		path = expanded
	}

	if _, err := os.Stat(path); err == nil && !force {
		return "", errors.Errorf("config file %s already exists, use --force to overwrite", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return "", errors.Wrapf(err, "write config %s", path)
	}
	return path, nil
}
