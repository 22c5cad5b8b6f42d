package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/config"
	"github.com/sunr3d/archiver-status/internal/entrypoint"
)

var ErrTargetRequired = errors.New("нужно указать --dataset или --resource")

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "archiver",
		Short:         "Archival status coordinator",
		Long:          "Serves archival status of catalog resources and datasets and dispatches archive jobs on demand.",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newTriggerCmd(),
		newStatusCmd(),
	)
	return root
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			return entrypoint.Run(cmd.Context(), cfg, log)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			return entrypoint.Migrate(cmd.Context(), cfg, log)
		},
	}
}

func newTriggerCmd() *cobra.Command {
	var datasets, resources []string

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Enqueue archive jobs regardless of existing status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(datasets) == 0 && len(resources) == 0 {
				return ErrTargetRequired
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := entrypoint.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			var result *multierror.Error
			for _, id := range datasets {
				if err := a.Service.TriggerDataset(cmd.Context(), id); err != nil {
					result = multierror.Append(result, fmt.Errorf("датасет %s: %w", id, err))
				}
			}
			for _, id := range resources {
				if err := a.Service.TriggerResource(cmd.Context(), id); err != nil {
					result = multierror.Append(result, fmt.Errorf("ресурс %s: %w", id, err))
				}
			}

			queued := len(datasets) + len(resources)
			if result != nil {
				queued -= len(result.Errors)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "поставлено задач: %d\n", queued)
			return result.ErrorOrNil()
		},
	}

	cmd.Flags().StringSliceVar(&datasets, "dataset", nil, "dataset id or name (repeatable)")
	cmd.Flags().StringSliceVar(&resources, "resource", nil, "resource id (repeatable)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var dataset, resource string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print archival status as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (dataset == "") == (resource == "") {
				return ErrTargetRequired
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := entrypoint.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			var out any
			if dataset != "" {
				out, err = a.Service.GetDatasetStatus(cmd.Context(), dataset)
			} else {
				out, err = a.Service.GetResourceStatus(cmd.Context(), resource)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset id or name")
	cmd.Flags().StringVar(&resource, "resource", "", "resource id")
	return cmd
}
