// Package cli implements the hunt command line interface for ad-hoc
// searches without the server.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Search Australian job boards from the terminal",
	Long: `hunt scrapes Indeed, Seek and LinkedIn, scores every posting
against a candidate profile and prints the ranked results.

Examples:
  hunt search --locations adelaide --role graduate
  hunt search --locations adelaide,sydney --since 24h --top 20
  hunt search --config hunt.toml --companies big-tech`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"TOML config file with profile, preferences and weights")
}
