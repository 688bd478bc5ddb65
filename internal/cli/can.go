package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"salt_portal/internal/guard"
)

func newCanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "can <path>",
		Short: "Show what the portal would do for a page with the stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			path := args[0]
			req, err := e.table.Lookup(path)
			if errors.Is(err, guard.ErrNoRoute) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: render (public)\n", path)
				return nil
			}
			if err != nil {
				return err
			}

			d := guard.Evaluate(e.ctrl.Snapshot(), req)
			switch d.Outcome {
			case guard.Redirect:
				fmt.Fprintf(cmd.OutOrStdout(), "%s: redirect to %s (%s)\n", path, d.Target, d.Reason)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", path, d.Outcome, d.Reason)
			}
			return nil
		},
	}
}

func newRoutesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := guard.LoadTable(opts.routes)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(map[string][]guard.Route{"routes": table.Routes()})
		},
	}
}
