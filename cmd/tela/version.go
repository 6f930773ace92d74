package main

import (
	"fmt"

	"github.com/aretw0/tela"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tela",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tela version %s\n", tela.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
