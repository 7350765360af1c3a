package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasheet/internal/core"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types [TYPE]",
		Short: "List inventory types or show the fields of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, s := range core.Schemas() {
					fmt.Fprintf(out, "%-12s %s\n", s.Key, s.Description)
				}
				return nil
			}

			s, ok := core.LookupSchema(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", core.ErrUnknownType, args[0])
			}

			fmt.Fprintf(out, "%s: %s\n", s.Key, s.Description)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tTYPE\tREQUIRED\tDEFAULT")
			for _, f := range s.Fields {
				req := ""
				if f.Required {
					req = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, strings.ToLower(f.Type.String()), req, f.Default)
			}
			return tw.Flush()
		},
	}
}
