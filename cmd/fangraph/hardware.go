package main

import (
	"fmt"

	"github.com/aretw0/fangraph/pkg/adapters/file"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/spf13/cobra"
)

var hardwareCmd = &cobra.Command{
	Use:   "hardware <hardware-file>",
	Short: "List the hardware of a hardware file",
	Long: `Lists the sensors, fans and controls of a hardware file with their last readings.
With --write, the normalized document is written to a new file instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := file.ReadHardware(args[0])
		if err != nil {
			return err
		}

		if out, _ := cmd.Flags().GetString("write"); out != "" {
			if err := file.WriteHardware(out, &doc.Inventory, doc.Readings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hardware written to %s\n", out)
			return nil
		}

		w := cmd.OutOrStdout()
		for _, kind := range []domain.HardwareKind{domain.HardwareTemp, domain.HardwareFan, domain.HardwareControl} {
			fmt.Fprintf(w, "%s:\n", kind)
			for _, h := range doc.Category(kind) {
				reading := "-"
				if v, ok := doc.Readings[h.HardwareID]; ok {
					reading = fmt.Sprintf("%g", v)
				}
				fmt.Fprintf(w, "  %-20s %-30s %s\n", h.HardwareID, h.Name, reading)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hardwareCmd)
	hardwareCmd.Flags().StringP("write", "w", "", "Write the normalized hardware document to this file")
}
