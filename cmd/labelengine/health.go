package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check store connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.HasStore() {
			fmt.Println("ok (no store configured)")
			return nil
		}

		client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("store ping failed: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}
