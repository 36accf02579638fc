package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyvectordb/tinyvectordb/internal/hybrid"
)

var (
	searchDense   string
	searchVersion int64
	searchFilter  string
	searchK       int
)

var searchCmd = &cobra.Command{
	Use:   "search <space>",
	Short: "Search for nearest vectors in a space",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		vec, err := parseDense(searchDense)
		if err != nil {
			fatal(err)
		}
		space, err := rt.Managers.Space.GetByName(args[0])
		if err != nil {
			fatal(err)
		}

		hits, err := rt.Hybrid.Search(hybrid.Query{
			SpaceID:         space.ID,
			VersionUniqueID: searchVersion,
			Vector:          vec,
			Filter:          searchFilter,
			K:               searchK,
		})
		if err != nil {
			fatal(err)
		}
		for _, h := range hits {
			fmt.Printf("%d\t%.6f\n", h.ID, h.Distance)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchDense, "dense", "", "comma-separated dense query vector")
	searchCmd.Flags().Int64Var(&searchVersion, "version", 0, "version unique_id (defaults to the space's default version)")
	searchCmd.Flags().StringVar(&searchFilter, "filter", "", "metadata filter expression")
	searchCmd.Flags().IntVar(&searchK, "k", 10, "number of results")
}
