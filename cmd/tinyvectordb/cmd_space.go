package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

var (
	spaceDimension      int
	spaceMetric         string
	spaceDescription    string
	spaceDefaultIndex   string
)

var spaceCmd = &cobra.Command{
	Use:   "space",
	Short: "Manage spaces",
}

var spaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a space with one dense index",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		indexName := spaceDefaultIndex
		if indexName == "" {
			indexName = "default"
		}
		spec := catalog.IndexSpec{
			ValueKind: catalog.Dense,
			Metric:    parseMetric(spaceMetric),
			Dimension: spaceDimension,
		}
		spec.ResolveDefaults(rt.Config.DefaultM, rt.Config.DefaultEfCons)

		space, _, _, err := rt.Managers.CreateSpace(args[0], spaceDescription,
			map[string]catalog.IndexSpec{indexName: spec}, indexName)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("created space %q (id=%d)\n", space.Name, space.ID)
	},
}

var spaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List spaces",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		spaces, err := rt.Managers.Space.GetAll()
		if err != nil {
			fatal(err)
		}
		for _, s := range spaces {
			fmt.Printf("%d\t%s\t%s\n", s.ID, s.Name, s.Description)
		}
	},
}

var spaceDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a space and everything it owns",
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
		if err := rt.Managers.Space.Delete(space.ID); err != nil {
			fatal(err)
		}
		fmt.Printf("deleted space %q\n", args[0])
	},
}

func parseMetric(s string) catalog.Metric {
	switch s {
	case "cosine":
		return catalog.Cosine
	case "inner_product":
		return catalog.InnerProduct
	default:
		return catalog.L2
	}
}

func init() {
	rootCmd.AddCommand(spaceCmd)
	spaceCmd.AddCommand(spaceCreateCmd, spaceListCmd, spaceDeleteCmd)

	spaceCreateCmd.Flags().IntVar(&spaceDimension, "dimension", 0, "vector dimension (required)")
	spaceCreateCmd.Flags().StringVar(&spaceMetric, "metric", "l2", "distance metric (l2, cosine, inner_product)")
	spaceCreateCmd.Flags().StringVar(&spaceDescription, "description", "", "space description")
	spaceCreateCmd.Flags().StringVar(&spaceDefaultIndex, "index_name", "", "name of the default index (defaults to \"default\")")
	_ = spaceCreateCmd.MarkFlagRequired("dimension")
}
