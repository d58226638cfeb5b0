package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "handoverdoc",
	Short: "AI-powered handover documentation generator",
	Long: `handoverdoc walks a repository, runs a battery of static analyzers,
packs the highest-signal files into an LLM context budget, and drives a
sequence of analysis rounds to produce a fourteen-document Markdown
handover knowledge base — the onboarding and on-call context a team would
otherwise hand down by word of mouth.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".handoverdoc.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
