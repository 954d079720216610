// Package collector runs CLI commands against devices, parses the
// output, and assembles normalized entity records. Each entity follows
// the same shape: look up the platform's primary command in a closed
// table, send it, parse, apply enrichment side maps, normalize. A
// bounded worker pool fans the per-device work out over the fleet.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/session"
	"github.com/netsync-network/netsync/pkg/util"
)

// Session is the device transport surface the collectors consume.
// *session.Session satisfies it; tests substitute canned transcripts.
type Session interface {
	Send(ctx context.Context, command string) (string, error)
	Hostname() string
	Close() error
}

// Dialer opens an authenticated session to a device.
type Dialer func(ctx context.Context, device model.Device, creds model.Credentials) (Session, error)

// Entity names select what to collect from each device.
const (
	EntityDeviceInfo = "device_info"
	EntityInterfaces = "interfaces"
	EntityIPs        = "ip_addresses"
	EntityMACTable   = "mac_table"
	EntityNeighbors  = "neighbors"
	EntityInventory  = "inventory"
)

// defaultEntities is the collection order. Interfaces come before IPs
// so the address records can be derived from them in the same pass.
var defaultEntities = []string{
	EntityDeviceInfo,
	EntityInterfaces,
	EntityIPs,
	EntityMACTable,
	EntityNeighbors,
	EntityInventory,
}

// Enrichments toggles the secondary-command passes. All are on by
// default; each silently skips platforms without a command table entry.
type Enrichments struct {
	LAG          bool
	Switchport   bool
	Media        bool
	Transceivers bool
}

// Options configures a Collector.
type Options struct {
	Creds      model.Credentials
	Entities   []string // nil means all, in default order
	MaxWorkers int      // 0 means DefaultPoolWorkers
	Enrich     *Enrichments
	Dial       Dialer // nil means SSH via pkg/session

	// Session tuning, zero values use the session defaults.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxRetries     int
}

// Collector executes collection runs.
type Collector struct {
	opts   Options
	enrich Enrichments
	dial   Dialer
}

// New builds a Collector from options, filling in defaults.
func New(opts Options) *Collector {
	c := &Collector{
		opts:   opts,
		enrich: Enrichments{LAG: true, Switchport: true, Media: true, Transceivers: true},
		dial:   opts.Dial,
	}
	if opts.Enrich != nil {
		c.enrich = *opts.Enrich
	}
	if c.dial == nil {
		c.dial = c.sshDial
	}
	return c
}

func (c *Collector) sshDial(ctx context.Context, device model.Device, creds model.Credentials) (Session, error) {
	return session.Open(ctx, session.Params{
		Host:           device.Host,
		Platform:       device.Platform,
		Creds:          creds,
		ConnectTimeout: c.opts.ConnectTimeout,
		ReadTimeout:    c.opts.ReadTimeout,
		MaxRetries:     c.opts.MaxRetries,
	})
}

func (c *Collector) entities() []string {
	if len(c.opts.Entities) > 0 {
		return c.opts.Entities
	}
	return defaultEntities
}

// CollectDevice dials one device and collects the selected entities in
// order. Transport and timeout failures abort the device; a parse or
// command failure on one entity is recorded as a warning and the
// remaining entities still run.
func (c *Collector) CollectDevice(ctx context.Context, device model.Device) *DeviceResult {
	res := &DeviceResult{Host: device.Host, Platform: device.Platform, Attempted: true}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
	}()

	log := util.WithDevice(device.Host)
	sess, err := c.dial(ctx, device, c.opts.Creds)
	if err != nil {
		log.WithError(err).Warn("session failed")
		res.Err = err
		return res
	}
	defer sess.Close()
	res.Hostname = sess.Hostname()

	for _, entity := range c.entities() {
		if err := c.collectEntity(ctx, device, sess, entity, res); err != nil {
			if errors.Is(err, util.ErrParse) || errors.Is(err, util.ErrCommand) {
				log.WithError(err).Warnf("%s incomplete", entity)
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", entity, err))
				continue
			}
			res.Err = err
			return res
		}
	}
	return res
}

func (c *Collector) collectEntity(ctx context.Context, device model.Device, sess Session, entity string, res *DeviceResult) error {
	var err error
	switch entity {
	case EntityDeviceInfo:
		res.Info, err = c.collectDeviceInfo(ctx, device, sess)
	case EntityInterfaces:
		res.Interfaces, err = c.collectInterfaces(ctx, device, sess)
	case EntityIPs:
		intfs := res.Interfaces
		if intfs == nil {
			if intfs, err = c.collectInterfaces(ctx, device, sess); err != nil {
				break
			}
		}
		for _, intf := range intfs {
			if ip := model.IPFromInterface(intf); ip != nil {
				res.IPs = append(res.IPs, ip)
			}
		}
	case EntityMACTable:
		res.MACTable, err = c.collectMACTable(ctx, device, sess)
	case EntityNeighbors:
		res.Neighbors, err = c.collectNeighbors(ctx, device, sess)
	case EntityInventory:
		res.Inventory, err = c.collectInventory(ctx, device, sess)
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}
	return err
}

// FetchRunningConfig retrieves the device's running configuration as
// plain text for the backup path.
func (c *Collector) FetchRunningConfig(ctx context.Context, device model.Device) (string, string, error) {
	cmd, ok := commandFor(runningConfigCommands, device.Platform)
	if !ok {
		return "", "", fmt.Errorf("no running-config command for platform %s", device.Platform)
	}
	sess, err := c.dial(ctx, device, c.opts.Creds)
	if err != nil {
		return "", "", err
	}
	defer sess.Close()
	raw, err := sess.Send(ctx, cmd)
	if err != nil {
		return "", "", err
	}
	return raw, sess.Hostname(), nil
}
