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
	"github.com/netsync-network/netsync/pkg/gitrepo"
	"github.com/netsync-network/netsync/pkg/history"
)

func newBackupCmd() *cobra.Command {
	var deviceFlags []string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Push device running configs to the git repository",
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
			repo, err := gitrepo.New(gitrepo.Options{
				URL:     cfg.Git.URL,
				Project: cfg.Git.Project,
				Branch:  cfg.Git.Branch,
				Token:   cfg.Git.Token,
				Verify:  cfg.Git.Verify,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			coll := buildCollector(cfg, creds, nil)
			started := time.Now()
			tbl := cli.NewTable("HOST", "HOSTNAME", "RESULT")
			failed := 0
			for _, device := range devices {
				if ctx.Err() != nil {
					break
				}
				raw, hostname, err := coll.FetchRunningConfig(ctx, device)
				if err != nil {
					failed++
					tbl.Row(device.Host, "", cli.Red(err.Error()))
					continue
				}
				outcome, err := repo.PushConfig(ctx, device.Site, hostname, raw)
				if err != nil {
					failed++
					tbl.Row(device.Host, hostname, cli.Red(err.Error()))
					continue
				}
				tbl.Row(device.Host, hostname, cli.Status(string(outcome)))
			}
			tbl.Flush()

			status := "success"
			switch {
			case failed == len(devices):
				status = "error"
			case failed > 0:
				status = "partial"
			}
			hosts := make([]string, 0, len(devices))
			for _, d := range devices {
				hosts = append(hosts, d.Host)
			}
			recordRun(cfg, &history.Entry{
				Operation:   "backup",
				Status:      status,
				Started:     started,
				Finished:    time.Now(),
				Devices:     hosts,
				DeviceCount: len(hosts),
				Succeeded:   len(devices) - failed,
				Failed:      failed,
			})
			if failed > 0 {
				return fmt.Errorf("backup failed for %d of %d devices", failed, len(devices))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&deviceFlags, "devices", nil, "devices as host:platform[:site], comma separated")
	return cmd
}
