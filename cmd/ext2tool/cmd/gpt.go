package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afdw/ext2os/partition/gpt2"
	"github.com/afdw/ext2os/sectorio"
)

func defineGPTCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "gpt <image>",
		Short:        "Dump a GUID Partition Table",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGPT(args[0])
		},
	}
}

func runGPT(imagePath string) error {
	storage, err := sectorio.OpenFileStorage(imagePath, false)
	if err != nil {
		return err
	}
	defer storage.Close()

	table, err := gpt2.Read(storage)
	if err != nil {
		return err
	}
	fmt.Printf("table %s\n", table.ID)
	for i, p := range table.Partitions {
		fmt.Printf("%2d  %-20s  type=%s  id=%s  sectors=[%d,%d]\n",
			i, p.Name, p.TypeID, p.ID, p.StartingSector, p.EndingSector)
	}
	return nil
}
