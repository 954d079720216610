package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsync-network/netsync/pkg/cli"
	"github.com/netsync-network/netsync/pkg/reconcile"
	"github.com/netsync-network/netsync/pkg/task"
)

func newSyncCmd() *cobra.Command {
	var (
		deviceFlags []string
		dryRun      bool
		cleanup     []string
		detailed    bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Collect devices and reconcile NetBox against them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			devices, err := resolveDevices(cfg, deviceFlags)
			if err != nil {
				return err
			}
			creds, err := resolveCredentials(cfg)
			if err != nil {
				return err
			}
			inv, err := buildInventory(cfg)
			if err != nil {
				return err
			}

			// --cleanup adds delete permission on top of the config file's
			// sync section for the named entities.
			for _, entity := range cleanup {
				if cfg.Sync.Cleanup == nil {
					cfg.Sync.Cleanup = make(map[string]bool)
				}
				cfg.Sync.Cleanup[entity] = true
			}
			policy, err := cfg.Policy()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dry-run") {
				dryRun = cfg.Sync.DryRun
			}

			syncer, err := reconcile.New(inv, policy, dryRun)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tasks := task.NewManager()
			id := tasks.Create("sync", fmt.Sprintf("sync %d devices", len(devices)), "collect", "reconcile")
			tasks.Start(id, 0, len(devices))
			ctx, err = tasks.Context(ctx, id)
			if err != nil {
				return err
			}

			started := time.Now()
			agg := buildCollector(cfg, creds, nil).Run(ctx, devices)
			tasks.Update(id, "reconcile", 1, agg.Succeeded())
			if agg.Succeeded() == 0 && len(devices) > 0 {
				tasks.Fail(id, "no device collected")
				recordRun(cfg, runEntry("sync", started, agg))
				printAggregate(agg)
				return fmt.Errorf("nothing to reconcile: collection failed on every device")
			}

			report, syncErr := syncer.Sync(ctx, devices, agg.Results)

			entry := runEntry("sync", started, agg)
			entry.Changes = report.TotalChanges()
			entry.Summary = report.Summary(false)
			entry.Stats = reportStats(report)
			if syncErr != nil {
				entry.Status = "partial"
				entry.Error = syncErr.Error()
				tasks.Fail(id, syncErr.Error())
			} else {
				tasks.Complete(id, report)
			}
			recordRun(cfg, entry)

			printAggregate(agg)
			printReport(report, detailed)
			return syncErr
		},
	}

	cmd.Flags().StringSliceVar(&deviceFlags, "devices", nil, "devices as host:platform[:site], comma separated")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan changes without applying them")
	cmd.Flags().StringSliceVar(&cleanup, "cleanup", nil, "entities allowed to delete stale objects (interfaces, inventory_items, cables); stale ip_addresses are moved, never deleted")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "print every planned change")
	return cmd
}

// newDiffCmd is sync with dry-run pinned on: collect, plan, print, touch
// nothing.
func newDiffCmd() *cobra.Command {
	cmd := newSyncCmd()
	cmd.Use = "diff"
	cmd.Short = "Preview inventory changes without applying them"
	cmd.Flags().Set("dry-run", "true")
	cmd.Flags().Set("detailed", "true")
	cmd.Flags().MarkHidden("dry-run")
	return cmd
}

func printReport(report *reconcile.Report, detailed bool) {
	fmt.Println()
	if report.DryRun {
		fmt.Println(cli.Bold("Dry run: no changes were applied."))
	}
	tbl := cli.NewTable("ENTITY", "CHANGES")
	for _, res := range report.Results {
		tbl.Row(res.Entity, res.Summary(detailed))
	}
	tbl.Flush()
	fmt.Printf("total: %d changes, %d skips\n", report.TotalChanges(), report.TotalSkips())

	if detailed {
		fmt.Println()
		fmt.Print(report.FormatDetailed(true))
	}
	for _, e := range report.Errors {
		fmt.Println(cli.Red("error: " + e))
	}
}
