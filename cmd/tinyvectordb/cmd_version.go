package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	versionDescription string
	versionTag         string
	versionIsDefault   bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Manage space versions",
}

var versionAddCmd = &cobra.Command{
	Use:   "add <space> <name>",
	Short: "Add a version to a space",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		space, err := rt.Managers.Space.GetByName(args[0])
		if err != nil {
			fatal(err)
		}
		v, err := rt.Managers.Version.Add(space.ID, args[1], versionDescription, versionTag, versionIsDefault)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("created version %q (unique_id=%d)\n", v.Name, v.UniqueID)
	},
}

var versionListCmd = &cobra.Command{
	Use:   "list <space>",
	Short: "List a space's versions",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		space, err := rt.Managers.Space.GetByName(args[0])
		if err != nil {
			fatal(err)
		}
		versions, err := rt.Managers.Version.GetAll(space.ID)
		if err != nil {
			fatal(err)
		}
		for _, v := range versions {
			fmt.Printf("%d\t%s\t%s\tdefault=%v\n", v.UniqueID, v.Name, v.Tag, v.IsDefault)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.AddCommand(versionAddCmd, versionListCmd)

	versionAddCmd.Flags().StringVar(&versionDescription, "description", "", "version description")
	versionAddCmd.Flags().StringVar(&versionTag, "tag", "", "version tag")
	versionAddCmd.Flags().BoolVar(&versionIsDefault, "default", false, "make this the space's default version")
}
