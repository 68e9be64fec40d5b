//go:build !linux

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func defineMountCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "mount <image> <mountpoint>",
		Short:        "Mount an ext2 image read-only via FUSE (Linux only)",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("cmd: mount is only supported on linux")
		},
	}
}
