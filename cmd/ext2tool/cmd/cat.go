package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/afdw/ext2os/ext2"
	"github.com/afdw/ext2os/fs"
	"github.com/afdw/ext2os/sectorio"
)

func defineCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "cat <image> <path>",
		Short:        "Print a regular file's contents",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(args[0], args[1])
		},
	}
}

func runCat(imagePath, path string) error {
	storage, err := sectorio.OpenFileStorage(imagePath, false)
	if err != nil {
		return err
	}
	defer storage.Close()

	session := ext2.Open(storage)
	inodeIndex, err := session.ResolvePath(path)
	if err != nil {
		return err
	}
	stat := session.FileStat(inodeIndex)
	data := session.ReadRegularFileRange(inodeIndex, fs.ByteRange{Start: 0, End: stat.Size})
	_, err = os.Stdout.Write(data)
	return err
}
