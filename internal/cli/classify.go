package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/augesrob/Badger-sub000/internal/classify"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

// NewClassifyCommand creates the classify command. Fleet numbers and drivers
// are read from the store so the answer matches what agents would derive.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "classify <truck-number>",
		Short:        "Print the truck type derived for a truck number",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rootOpts.client()
			if err != nil {
				return err
			}

			s, err := client.Fetch(cmd.Context())
			if err != nil && !snapshot.IsMalformed(err) {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), classify.Classify(args[0], s.FleetNumbers, s.Drivers))
			return nil
		},
	}
}
