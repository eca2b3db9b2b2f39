package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studio1767/phonesync/internal/device"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Check that a device is connected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := newDevice(cfg).Connected(cmd.Context()); err != nil {
				fmt.Printf("%s %s\n", red("DISCONNECTED"), err)
				return err
			}
			fmt.Printf("%s device ready\n", green("CONNECTED"))
			return nil
		},
	}
}

func newFoldersCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "folders [root...]",
		Short: "List the folders on the device below the given roots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			roots := args
			if len(roots) == 0 {
				roots = device.CommonFolders
			}

			dev := newDevice(cfg)
			if err := dev.Connected(cmd.Context()); err != nil {
				return err
			}

			for _, folder := range dev.Folders(cmd.Context(), roots, depth) {
				fmt.Println(cyan(folder))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 2, "how many levels below each root to list")

	return cmd
}
