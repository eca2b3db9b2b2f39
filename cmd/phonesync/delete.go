package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/studio1767/phonesync/internal/config"
	"github.com/studio1767/phonesync/internal/device"
	"github.com/studio1767/phonesync/internal/ops"
)

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <manifest>",
		Short: "Delete the files a sync pulled from the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			mreader, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer mreader.Close()

			paths := ops.PulledPaths(cmd.Context(), mreader)
			return deleteRemote(cmd.Context(), cfg, paths, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "don't ask for confirmation")

	return cmd
}

func deleteRemote(ctx context.Context, cfg *config.Config, paths []string, yes bool) error {
	if len(paths) == 0 {
		fmt.Println("Nothing to delete")
		return nil
	}

	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete %d files from the device? (y/N)", len(paths)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Deletion cancelled")
			return nil
		}
	}

	dev := newDevice(cfg)
	if err := dev.Connected(ctx); err != nil {
		return err
	}

	summary := dev.DeleteAll(ctx, paths)
	printDeleteSummary(summary)

	if summary.Failed > 0 {
		return fmt.Errorf("failed to delete %d of %d files", summary.Failed, summary.Total)
	}
	return ctx.Err()
}

func printDeleteSummary(summary device.DeleteSummary) {
	for _, remote := range summary.Failures {
		fmt.Printf("-   failed: %s\n", remote)
	}

	fmt.Println()
	fmt.Printf("Delete Summary\n")
	fmt.Printf("        total: %d\n", summary.Total)
	fmt.Printf("      deleted: %d\n", summary.Deleted)
	fmt.Printf("       failed: %d\n", summary.Failed)
	fmt.Println()
}

// confirm asks a yes/no question. Ctrl-C at the prompt counts as no.
func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label: label,
	}

	answer, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return false, nil
		}
		return false, err
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
