package cmd

import (
	"github.com/spf13/cobra"
)

const appName = "ext2tool"

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: appName + " - create, inspect, and mount ext2 images",
	}

	rootCmd.AddCommand(defineCreateCommand())
	rootCmd.AddCommand(defineLsCommand())
	rootCmd.AddCommand(defineCatCommand())
	rootCmd.AddCommand(defineGPTCommand())
	rootCmd.AddCommand(defineMountCommand())

	return rootCmd.Execute()
}
