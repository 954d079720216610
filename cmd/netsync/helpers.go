package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/config"
	"github.com/netsync-network/netsync/pkg/history"
	"github.com/netsync-network/netsync/pkg/inventory"
	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/reconcile"
)

func loadConfig() (*config.Config, error) {
	return config.Load(configFlag)
}

// resolveDevices merges the --devices flag (host:platform[:site] entries)
// with the config file's device list. The flag, when given, replaces the
// list entirely.
func resolveDevices(cfg *config.Config, flag []string) ([]model.Device, error) {
	if len(flag) == 0 {
		if len(cfg.Devices.Hosts) == 0 {
			return nil, fmt.Errorf("no devices: use --devices or list hosts in the config file")
		}
		return cfg.Devices.Hosts, nil
	}
	devices := make([]model.Device, 0, len(flag))
	for _, spec := range flag {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("device %q: want host:platform[:site]", spec)
		}
		d := model.Device{
			Host:     parts[0],
			Platform: model.NormalizePlatform(parts[1]),
		}
		if len(parts) > 2 {
			d.Site = parts[2]
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// resolveCredentials fills any gaps in the configured credentials by
// prompting. Prompting requires a terminal; a non-interactive run with
// missing credentials fails instead of hanging.
func resolveCredentials(cfg *config.Config) (model.Credentials, error) {
	creds := cfg.Credentials()
	if creds.Username != "" && creds.Password != "" {
		return creds, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return creds, fmt.Errorf("device credentials missing: set NET_USERNAME/NET_PASSWORD or the devices section")
	}
	if creds.Username == "" {
		fmt.Fprint(os.Stderr, "Username: ")
		if _, err := fmt.Scanln(&creds.Username); err != nil {
			return creds, err
		}
	}
	if creds.Password == "" {
		pw, err := promptSecret("Password")
		if err != nil {
			return creds, err
		}
		creds.Password = pw
	}
	return creds, nil
}

func promptSecret(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return string(b), err
}

func buildCollector(cfg *config.Config, creds model.Credentials, entities []string) *collector.Collector {
	return collector.New(collector.Options{
		Creds:          creds,
		Entities:       entities,
		MaxWorkers:     cfg.Devices.MaxWorkers,
		ConnectTimeout: time.Duration(cfg.Devices.ConnectTimeout) * time.Second,
		ReadTimeout:    time.Duration(cfg.Devices.ReadTimeout) * time.Second,
		MaxRetries:     cfg.Devices.Retries,
	})
}

func buildInventory(cfg *config.Config) (*inventory.Client, error) {
	if cfg.NetBox.URL == "" {
		return nil, fmt.Errorf("netbox.url is not configured")
	}
	token := cfg.NetBoxToken()
	if token == "" {
		return nil, fmt.Errorf("no inventory token: set NETBOX_TOKEN, the keyring, or netbox.token")
	}
	return inventory.New(cfg.NetBox.URL, token, inventory.Options{
		VerifySSL: !cfg.NetBox.Verify.Insecure,
		CAFile:    cfg.NetBox.Verify.CAFile,
	}), nil
}

// recordRun appends the durable history entry; failures to write
// history are reported but never fail the run itself.
func recordRun(cfg *config.Config, e *history.Entry) {
	if err := history.NewStore(cfg.HistoryFile).Append(e); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history not recorded: %v\n", err)
	}
}

func runEntry(op string, started time.Time, agg *collector.Aggregate) *history.Entry {
	hosts := make([]string, 0, len(agg.Results))
	stats := make(map[string]history.EntityStats)
	for _, r := range agg.Results {
		hosts = append(hosts, r.Host)
		// Warnings are "entity: reason"; fold them into per-entity
		// failure counts.
		for _, w := range r.Warnings {
			entity, _, ok := strings.Cut(w, ":")
			if !ok {
				continue
			}
			s := stats[entity]
			s.Failed++
			stats[entity] = s
		}
	}
	e := &history.Entry{
		Operation:   op,
		Status:      string(agg.Status()),
		Started:     started,
		Finished:    time.Now(),
		Devices:     hosts,
		DeviceCount: len(hosts),
		Succeeded:   agg.Succeeded(),
		Failed:      agg.Failed(),
		Skipped:     agg.Skipped(),
	}
	if len(stats) > 0 {
		e.Stats = stats
	}
	return e
}

// reportStats flattens a reconcile report into the per-entity history
// counters.
func reportStats(report *reconcile.Report) map[string]history.EntityStats {
	stats := make(map[string]history.EntityStats, len(report.Results))
	for _, d := range report.Results {
		s := history.EntityStats{
			Created: len(d.Creates),
			Updated: len(d.Updates),
			Deleted: len(d.Deletes),
			Skipped: len(d.Skips),
		}
		for _, group := range [][]*reconcile.ObjectChange{d.Creates, d.Updates, d.Deletes} {
			for _, c := range group {
				if c.Error != "" {
					s.Failed++
				}
			}
		}
		stats[d.Entity] = s
	}
	return stats
}
