package commands

import (
	"fmt"
	"valence/internal/components/db"

	"github.com/spf13/cobra"
)

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manages the local cache.",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Removes every cached value and the stored api token.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStorage(cmd.Context(), getState(cmd.Context()))
		if err != nil {
			return err
		}
		defer store.Close()

		if store.redis != nil {
			store.cache.Clear(cmd.Context())
		}
		err = db.Reset(cmd.Context(), db.NewMakeTx(store.database))
		if err != nil {
			return fmt.Errorf("reset cache database: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "cache cleared")
		return nil
	},
}
