package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

var (
	tokenSpaceID    int64
	tokenExpireDays int
	tokenPerms      []string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint and validate access tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a token scoped to a space",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		tok, err := rt.Minter.NewToken(tokenSpaceID, permissionsFromFlags(tokenPerms), tokenExpireDays)
		if err != nil {
			fatal(err)
		}
		fmt.Println(tok.TokenStr)
	},
}

var tokenValidateCmd = &cobra.Command{
	Use:   "validate <token>",
	Short: "Check a token's signature and expiry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		if err := rt.Minter.Validate(args[0]); err != nil {
			fatal(err)
		}
		fmt.Println("valid")
	},
}

// permissionsFromFlags grants read_write on every resource named in names,
// and Denied everywhere else.
func permissionsFromFlags(names []string) catalog.Permissions {
	granted := make(map[string]bool, len(names))
	for _, n := range names {
		granted[n] = true
	}
	grant := func(name string) catalog.Permission {
		if granted[name] || granted["all"] {
			return catalog.ReadWrite
		}
		return catalog.Denied
	}
	return catalog.Permissions{
		System:   grant("system"),
		Space:    grant("space"),
		Version:  grant("version"),
		Vector:   grant("vector"),
		Search:   grant("search"),
		Snapshot: grant("snapshot"),
		Security: grant("security"),
		KeyValue: grant("keyvalue"),
	}
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenCreateCmd, tokenValidateCmd)

	tokenCreateCmd.Flags().Int64Var(&tokenSpaceID, "space_id", 0, "space id this token is scoped to")
	tokenCreateCmd.Flags().IntVar(&tokenExpireDays, "expire_days", 0, "expiry in days (0 uses the configured default)")
	tokenCreateCmd.Flags().StringSliceVar(&tokenPerms, "grant", nil, "resource categories to grant read_write on (or \"all\")")
}
