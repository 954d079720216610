// Package config loads the YAML run configuration and resolves
// credentials. Decoding is strict: unknown keys are errors, so typos in
// a config file fail the run instead of silently applying defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/netsync-network/netsync/pkg/gitrepo"
	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/reconcile"
	"github.com/netsync-network/netsync/pkg/util"
)

// Config is the full run configuration.
type Config struct {
	Devices DevicesConfig `yaml:"devices"`
	NetBox  NetBoxConfig  `yaml:"netbox"`
	Git     GitConfig     `yaml:"git"`
	Sync    SyncConfig    `yaml:"sync"`

	HistoryFile string `yaml:"history_file"`

	path string
}

// DevicesConfig holds device defaults and the static device list.
// Credentials here are the lowest-precedence source; see Credentials.
type DevicesConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Secret   string `yaml:"secret"`

	ConnectTimeout int `yaml:"connect_timeout"` // seconds
	ReadTimeout    int `yaml:"read_timeout"`    // seconds
	Retries        int `yaml:"retries"`
	MaxWorkers     int `yaml:"max_workers"`

	Hosts []model.Device `yaml:"hosts"`
}

// NetBoxConfig points at the inventory service.
type NetBoxConfig struct {
	URL    string         `yaml:"url"`
	Token  string         `yaml:"token"`
	Verify gitrepo.Verify `yaml:"verify_ssl"`
}

// GitConfig points at the config-backup repository.
type GitConfig struct {
	URL     string         `yaml:"url"`
	Project string         `yaml:"project"`
	Branch  string         `yaml:"branch"`
	Token   string         `yaml:"token"`
	Verify  gitrepo.Verify `yaml:"verify_ssl"`
}

// SyncConfig shapes reconciliation: the dry-run default, which entities
// may delete stale objects, per-entity field toggles with source
// renames and create-time defaults, and the name pattern gating
// interface deletes.
type SyncConfig struct {
	DryRun                 bool                              `yaml:"dry_run"`
	Cleanup                map[string]bool                   `yaml:"cleanup"`
	Fields                 map[string]map[string]bool        `yaml:"fields"`
	FieldSources           map[string]map[string]string      `yaml:"field_sources"`
	FieldDefaults          map[string]map[string]interface{} `yaml:"field_defaults"`
	InterfaceDeletePattern string                            `yaml:"interface_delete_pattern"`
}

// Load reads and strictly decodes a config file. A missing path returns
// an empty config so every setting can come from flags and environment.
func Load(path string) (*Config, error) {
	cfg := &Config{path: path}
	if path == "" {
		cfg.applyDefaults()
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.NewConfigError(path, "", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, util.NewConfigError(path, yamlErrorKey(err), err)
	}
	cfg.path = path
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Devices.ConnectTimeout == 0 {
		c.Devices.ConnectTimeout = 15
	}
	if c.Devices.ReadTimeout == 0 {
		c.Devices.ReadTimeout = 30
	}
	if c.Devices.Retries == 0 {
		c.Devices.Retries = 3
	}
	if c.Devices.MaxWorkers == 0 {
		c.Devices.MaxWorkers = 5
	}
	if c.Git.Branch == "" {
		c.Git.Branch = "main"
	}
	if c.HistoryFile == "" {
		c.HistoryFile = defaultHistoryFile()
	}
}

func (c *Config) validate() error {
	for i, d := range c.Devices.Hosts {
		if d.Host == "" {
			return util.NewConfigError(c.path, fmt.Sprintf("devices.hosts[%d].host", i),
				errors.New("host is required"))
		}
		if d.Platform == "" {
			return util.NewConfigError(c.path, fmt.Sprintf("devices.hosts[%d].platform", i),
				errors.New("platform is required"))
		}
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy converts the sync section into a compiled reconciliation
// policy. Entities with cleanup enabled may delete any stale object;
// interfaces additionally require the configured name pattern.
func (c *Config) Policy() (*reconcile.Policy, error) {
	p := &reconcile.Policy{Entities: make(map[string]*reconcile.EntityPolicy)}
	ensure := func(entity string) *reconcile.EntityPolicy {
		ep, ok := p.Entities[entity]
		if !ok {
			ep = &reconcile.EntityPolicy{}
			p.Entities[entity] = ep
		}
		return ep
	}
	for entity, fields := range c.Sync.Fields {
		ep := ensure(entity)
		ep.Fields = fields
	}
	for entity, sources := range c.Sync.FieldSources {
		ep := ensure(entity)
		ep.Sources = sources
	}
	for entity, defaults := range c.Sync.FieldDefaults {
		ep := ensure(entity)
		ep.Defaults = defaults
	}
	for entity, on := range c.Sync.Cleanup {
		if !on {
			continue
		}
		ep := ensure(entity)
		if entity == reconcile.EntityInterfaces {
			ep.DeletePattern = c.Sync.InterfaceDeletePattern
		} else {
			ep.DeletePattern = `.*`
		}
	}
	if err := p.Compile(); err != nil {
		return nil, util.NewConfigError(c.path, "sync.interface_delete_pattern", err)
	}
	return p, nil
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "netsync-history.json"
	}
	return home + "/.netsync/history.json"
}

// yamlErrorKey pulls the field name out of a strict-decode error when
// one is present ("field xyz not found ...").
func yamlErrorKey(err error) string {
	msg := err.Error()
	const marker = "field "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, ' '); j > 0 {
		return rest[:j]
	}
	return rest
}
