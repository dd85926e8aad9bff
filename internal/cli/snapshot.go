package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

// NewSnapshotCommand groups the document admin commands.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Read or clear the stored snapshot",
	}

	cmd.AddCommand(newSnapshotGetCommand(rootOpts))
	cmd.AddCommand(newSnapshotClearCommand(rootOpts))
	return cmd
}

func newSnapshotGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "get",
		Short:        "Print the stored snapshot as JSON",
		Args:         cobra.NoArgs,
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
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}
}

func newSnapshotClearCommand(rootOpts *RootOptions) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty one partition of the stored snapshot",
		Long: `Empty one partition of the stored snapshot.

Targets: all, printroom, preshift, movement, drivers, fleet.
Agents adopt the cleared document on their next pull unless they hold
unpushed edits, in which case their next push restores them.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := snapshot.ParsePartition(target)
			if err != nil {
				return err
			}

			client, err := rootOpts.client()
			if err != nil {
				return err
			}

			lastSync, err := client.Clear(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s (lastSync %d)\n", p, lastSync)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", string(snapshot.PartitionAll), "partition to clear")
	return cmd
}
