// Command ext2tool creates, inspects, and mounts ext2 images from the host.
package main

import (
	"fmt"
	"os"

	"github.com/afdw/ext2os/cmd/ext2tool/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "ext2tool: %v\n", r)
			os.Exit(1)
		}
	}()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
