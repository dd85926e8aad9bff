package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/augesrob/Badger-sub000/config"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
	"github.com/augesrob/Badger-sub000/internal/storeclient"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	ServerURL  string // overrides agent.server_url
	Dataset    string // overrides agent.dataset

	Config *config.Config
}

// NewRootCommand creates the root command for badgerctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "badgerctl",
		Short: "Badger dock board client",
		Long:  "Inspect and administer the shared dock board snapshot, or run a terminal agent against it.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", os.Getenv("CONFIG_PATH"), "config file (defaults apply when empty)")
	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", "", "document store base URL")
	cmd.PersistentFlags().StringVar(&opts.Dataset, "dataset", "", "dataset name")

	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewAgentCommand(opts))

	return cmd
}

func (o *RootOptions) load() error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration from %s: %w", o.ConfigPath, err)
		}
		cfg = loaded
	}
	if o.ServerURL != "" {
		cfg.Agent.ServerURL = o.ServerURL
	}
	if o.Dataset != "" {
		cfg.Agent.Dataset = o.Dataset
	}
	o.Config = cfg
	return nil
}

func (o *RootOptions) client() (*storeclient.Client, error) {
	return storeclient.New(storeclient.Options{
		BaseURL: o.Config.Agent.ServerURL,
		Dataset: o.Config.Agent.Dataset,
		Proxy:   o.Config.Agent.HTTPProxy,
		Timeout: o.Config.Agent.RequestTimeout,
	})
}

func (o *RootOptions) layout() snapshot.Layout {
	w := o.Config.Warehouse
	return snapshot.Layout{
		LoadingDoors: w.LoadingDoors,
		Routes:       w.Routes,
		StagingDoors: w.StagingDoors,
	}
}
