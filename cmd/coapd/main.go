// Command coapd runs a coapkit server, wired from a config file and
// environment overrides via the serve subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:   "coapd",
		Short: "coapkit CoAP framework server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	flags := pflag.NewFlagSet("coapd", pflag.ContinueOnError)
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().AddFlagSet(flags)
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
