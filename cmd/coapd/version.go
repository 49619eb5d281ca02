package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coapkit/coapkit/app"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the coapkit framework version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(app.FrameworkVersion)
			return nil
		},
	}
}
