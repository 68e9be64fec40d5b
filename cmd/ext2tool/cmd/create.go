package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/afdw/ext2os/ext2"
	"github.com/afdw/ext2os/sectorio"
)

func defineCreateCommand() *cobra.Command {
	var sizeMB, inodeCount int64
	cmd := &cobra.Command{
		Use:          "create <image>",
		Short:        "Create a fresh ext2 image file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], uint64(sizeMB), uint64(inodeCount))
		},
	}
	cmd.Flags().Int64VarP(&sizeMB, "size", "s", 16, "image size in megabytes")
	cmd.Flags().Int64VarP(&inodeCount, "inodes", "i", 1024, "number of inodes to provision")
	return cmd
}

func runCreate(path string, sizeMB, inodeCount uint64) error {
	sectorCount := sizeMB * 1024 * 1024 / sectorio.SectorSize
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Truncate(int64(sectorCount * sectorio.SectorSize)); err != nil {
		f.Close()
		return err
	}
	f.Close()

	storage, err := sectorio.OpenFileStorage(path, true)
	if err != nil {
		return err
	}
	defer storage.Close()

	ext2.Format(storage, ext2.Params{BlockSize: 1024, InodeCount: inodeCount})
	return nil
}
