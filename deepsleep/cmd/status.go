package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/deepsleep/device"
	"github.com/sarchlab/deepsleep/retention"
)

var statusJSON bool

type statusRsp struct {
	Retention retention.Kind `json:"retention"`
	Path      string         `json:"path,omitempty"`
	BootCount int64          `json:"boot_count"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the boot counter kept in retention memory.",
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

		slot := retention.NewSlot(store, device.BootCountSlot,
			device.BootCountBits)

		bootCount, err := slot.Load()
		if err != nil {
			return err
		}

		rsp := statusRsp{
			Retention: c.Retention,
			Path:      c.RetentionPath,
			BootCount: bootCount,
		}

		if c.Retention == retention.KindMemory {
			rsp.Path = ""
		}

		if statusJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(rsp)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Boot count: %d (%s)\n",
			rsp.BootCount, describeStore(c))

		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(statusCmd)
}
