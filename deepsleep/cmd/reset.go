package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase retention memory, as a power loss would.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := c.OpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		err = store.Erase()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Retention memory erased (%s)\n",
			describeStore(c))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
