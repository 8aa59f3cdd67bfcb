package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jaki95/cpceek/config"
)

const defaultConfigPath = "./config/config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, config.ErrMissingRomsDir) {
			fmt.Fprintln(os.Stderr, "Please set storage.roms_dir in the configuration file.")
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string
	var assumeYes bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Download missing ROMs and offer the XML exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfgPath, assumeYes)
			if err != nil {
				return err
			}
			defer a.close()

			summary, err := a.processor.Sync(cmd.Context())
			if summary != nil {
				a.logger.Info("run summary",
					"pending", summary.Pending,
					"downloaded", summary.Downloads.Downloaded,
					"skipped", summary.Downloads.Skipped,
					"failed", summary.Downloads.Failed)
			}
			return err
		},
	}

	root := &cobra.Command{
		Use:           "cpceek",
		Short:         "Keep a local Amstrad CPC ROM collection in sync with the NVG archive",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          syncCmd.RunE,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, "config file path")

	syncCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every question")
	root.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every question")

	missing := &cobra.Command{
		Use:   "missing",
		Short: "List ROMs referenced by the local index that are not downloaded yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfgPath, false)
			if err != nil {
				return err
			}
			defer a.close()

			work, err := a.processor.Missing(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rec := range work.Records() {
				fmt.Fprintf(out, "%s\t%s\n", rec.FileName(), rec.ResourcePath)
			}
			fmt.Fprintf(out, "%d missing\n", work.Len())
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write GameInfo.xml and the menu list from the local index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfgPath, assumeYes)
			if err != nil {
				return err
			}
			defer a.close()

			_, err = a.processor.Export(cmd.Context())
			return err
		},
	}
	exportCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every question")

	root.AddCommand(syncCmd, missing, exportCmd)
	return root
}
