package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xwartz/cursor-api/pkg/client"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model names the backend accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, m := range client.Models() {
			fmt.Fprintln(cmd.OutOrStdout(), m.ID)
		}
		return nil
	},
}
