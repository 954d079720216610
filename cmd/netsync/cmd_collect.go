package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsync-network/netsync/pkg/cli"
	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/task"
)

func newCollectCmd() *cobra.Command {
	var (
		deviceFlags []string
		entities    []string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect state from devices",
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

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tasks := task.NewManager()
			id := tasks.Create("collect", fmt.Sprintf("collect %d devices", len(devices)))
			tasks.Start(id, 0, len(devices))
			ctx, err = tasks.Context(ctx, id)
			if err != nil {
				return err
			}

			started := time.Now()
			agg := buildCollector(cfg, creds, entities).Run(ctx, devices)
			if agg.Status() == collector.StatusError && len(devices) > 0 {
				tasks.Fail(id, "no device collected")
			} else {
				tasks.Complete(id, agg)
			}
			recordRun(cfg, runEntry("collect", started, agg))

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(agg)
			}
			printAggregate(agg)
			if agg.Status() == collector.StatusError && len(devices) > 0 {
				return fmt.Errorf("collection failed on every device")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&deviceFlags, "devices", nil, "devices as host:platform[:site], comma separated")
	cmd.Flags().StringSliceVar(&entities, "entities", nil, "entities to collect (device_info, interfaces, ip_addresses, mac_table, neighbors, inventory)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the full result as JSON")
	return cmd
}

func printAggregate(agg *collector.Aggregate) {
	tbl := cli.NewTable("HOST", "HOSTNAME", "STATUS", "INTERFACES", "NEIGHBORS", "DURATION")
	for _, r := range agg.Results {
		status := cli.Green("ok")
		switch {
		case !r.Attempted:
			status = cli.Yellow("skipped")
		case r.Err != nil:
			status = cli.Red("failed")
		case len(r.Warnings) > 0:
			status = cli.Yellow("ok*")
		}
		tbl.Row(r.Host, r.Hostname, status,
			strconv.Itoa(len(r.Interfaces)), strconv.Itoa(len(r.Neighbors)),
			r.Duration.Round(time.Millisecond).String())
	}
	tbl.Flush()

	for _, r := range agg.Results {
		if r.Err != nil {
			fmt.Printf("%s: %s\n", r.Host, cli.Red(r.Error))
		}
		for _, w := range r.Warnings {
			fmt.Printf("%s: %s\n", r.Host, cli.Yellow(w))
		}
	}
	fmt.Printf("\n%d ok, %d failed, %d skipped (%s)\n",
		agg.Succeeded(), agg.Failed(), agg.Skipped(), cli.Status(string(agg.Status())))
}
