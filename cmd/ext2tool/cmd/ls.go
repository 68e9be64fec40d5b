package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afdw/ext2os/ext2"
	"github.com/afdw/ext2os/sectorio"
)

func defineLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "ls <image> <path>",
		Short:        "List a directory's entries",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(args[0], args[1])
		},
	}
}

func runLs(imagePath, path string) error {
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
	for _, e := range session.ReadDir(inodeIndex) {
		if e.InodeIndex == 0 {
			continue
		}
		fmt.Printf("%8d  %s\n", e.InodeIndex, e.Name)
	}
	return nil
}
