package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinyvectordb/tinyvectordb/internal/ann"
	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

var (
	vectorDense    string
	vectorVersion  int64
	vectorUniqueID int64
)

var vectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Manage vectors",
}

var vectorUpsertCmd = &cobra.Command{
	Use:   "upsert <space>",
	Short: "Insert or update a dense vector",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		vec, err := parseDense(vectorDense)
		if err != nil {
			fatal(err)
		}

		space, err := rt.Managers.Space.GetByName(args[0])
		if err != nil {
			fatal(err)
		}
		version, err := resolveVersion(rt.Managers, space.ID, vectorVersion)
		if err != nil {
			fatal(err)
		}
		idx, err := rt.Managers.Index.DefaultFor(version.ID, catalog.Dense)
		if err != nil {
			fatal(err)
		}

		var uniqueID *int64
		if vectorUniqueID != 0 {
			uniqueID = &vectorUniqueID
		}
		v, err := rt.Managers.UpsertVector(catalog.UpsertVectorInput{
			VersionID: version.ID,
			UniqueID:  uniqueID,
			IndexID:   idx.ID,
			Kind:      catalog.Dense,
			Payload:   ann.EncodeDense(vec),
		})
		if err != nil {
			fatal(err)
		}

		manager, err := rt.IndexCache.Get(idx.ID)
		if err != nil {
			fatal(err)
		}
		if err := manager.Add(v.UniqueID, vec); err != nil {
			fatal(err)
		}
		fmt.Printf("upserted vector unique_id=%d\n", v.UniqueID)
	},
}

func resolveVersion(managers *catalog.Managers, spaceID, uniqueID int64) (*catalog.Version, error) {
	if uniqueID == 0 {
		return managers.Version.DefaultFor(spaceID)
	}
	return managers.Version.GetByUniqueID(spaceID, uniqueID)
}

func parseDense(csv string) ([]float32, error) {
	if csv == "" {
		return nil, fmt.Errorf("--dense is required")
	}
	parts := strings.Split(csv, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parse component %d: %w", i, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

func init() {
	rootCmd.AddCommand(vectorCmd)
	vectorCmd.AddCommand(vectorUpsertCmd)

	vectorUpsertCmd.Flags().StringVar(&vectorDense, "dense", "", "comma-separated dense vector components")
	vectorUpsertCmd.Flags().Int64Var(&vectorVersion, "version", 0, "version unique_id (defaults to the space's default version)")
	vectorUpsertCmd.Flags().Int64Var(&vectorUniqueID, "unique_id", 0, "unique_id to update (omit to insert a new vector)")
}
