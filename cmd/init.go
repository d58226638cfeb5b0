package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ziadkadry99/handoverdoc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize handoverdoc configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure handoverdoc for your project and generates a .handoverdoc.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
