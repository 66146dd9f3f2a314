package main

import (
	"fmt"
	"os"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to build man page: %w", err)
		}

		manPage = manPage.WithSection("Files", "Configuration is read from explainer.yml in the user config directory.\n"+
			"Set EXPLAINER_CONFIG_HOME to use another directory.")

		_, err = fmt.Fprint(os.Stdout, manPage.Build(roff.NewDocument()))
		return err //nolint:wrapcheck
	},
}
