//go:build linux

package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"bazil.org/fuse"
	fusefslib "bazil.org/fuse/fs"
	"github.com/spf13/cobra"

	"github.com/afdw/ext2os/ext2"
	"github.com/afdw/ext2os/fusefs"
	"github.com/afdw/ext2os/sectorio"
)

func defineMountCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "mount <image> <mountpoint>",
		Short:        "Mount an ext2 image read-only via FUSE",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(args[0], args[1])
		},
	}
}

func runMount(imagePath, mountpoint string) error {
	storage, err := sectorio.OpenFileStorage(imagePath, false)
	if err != nil {
		return err
	}
	defer storage.Close()

	session := ext2.Open(storage)

	conn, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("ext2"))
	if err != nil {
		return fmt.Errorf("cmd: mount %s: %w", mountpoint, err)
	}
	defer conn.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		fuse.Unmount(mountpoint)
	}()

	return fusefslib.Serve(conn, fusefs.New(session))
}
