package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opensolutionsgroup/ddi/internal/device"
)

func newDevicesCommand() *cobra.Command {
	var withGeometry bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List block devices without starting the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := device.List()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No suitable block devices found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			if withGeometry {
				fmt.Fprintln(w, "DEVICE\tSIZE\tMODEL\tRECOMMENDED BS")
				for _, d := range devices {
					info := device.DetectBlockSize(d.Name)
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						d.Name, d.Size, d.Model, info.RecommendedString())
				}
			} else {
				fmt.Fprintln(w, "DEVICE\tSIZE\tMODEL")
				for _, d := range devices {
					fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Size, d.Model)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&withGeometry, "geometry", false,
		"probe each device for its recommended block size (needs root)")
	return cmd
}
