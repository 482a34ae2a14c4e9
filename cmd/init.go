package cmd

import (
	"fmt"

	"github.com/nikogura/plclient/pkg/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		path := getConfigFile()
		if path == "" {
			path, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}

		err = config.InitConfig(path)
		if err != nil {
			err = errors.Wrap(err, "failed to create config")
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
		return err
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}
