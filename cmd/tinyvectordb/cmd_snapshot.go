package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinyvectordb/tinyvectordb/internal/clock"
)

var snapshotRestoreTarget string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Create and restore whole-database snapshots",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Archive the entire database to a zip file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		name := clock.SnapshotName(time.Now())
		file := filepath.Join(rt.Config.DataPath, "snapshots", name)
		staging := filepath.Join(rt.Config.DataPath, "snapshots", "staging", name+".d")
		if err := rt.Snapshots.Create("{}", file, staging); err != nil {
			fatal(err)
		}
		fmt.Printf("wrote snapshot %s\n", file)
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore the database from an archived snapshot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		target := snapshotRestoreTarget
		if target == "" {
			target = filepath.Join(rt.Config.DataPath, "snapshots", "restore", clock.SnapshotName(time.Now()))
		}
		if err := rt.Snapshots.Restore(args[0], target); err != nil {
			fatal(err)
		}
		fmt.Printf("restored snapshot into %s\n", target)
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotRestoreCmd)

	snapshotRestoreCmd.Flags().StringVar(&snapshotRestoreTarget, "target", "", "directory to restore into (defaults under data_path/snapshots/restore)")
}
