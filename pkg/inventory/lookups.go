package inventory

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/netsync-network/netsync/pkg/canon"
)

// Get-or-create lookups for the reference objects device records hang
// off. Matching is slug first, then exact name, because operators
// rename things in the UI but slugs stay put. A create that loses a
// race to another writer re-looks the object up instead of failing.

func (c *Client) getOrCreate(ctx context.Context, path, name string, extra map[string]interface{}, out interface{}) error {
	slug := canon.Slug(name)
	if ok, err := c.getOne(ctx, path, url.Values{"slug": {slug}}, out); err != nil || ok {
		return err
	}
	if ok, err := c.getOne(ctx, path, url.Values{"name": {name}}, out); err != nil || ok {
		return err
	}

	fields := map[string]interface{}{"name": name, "slug": slug}
	for k, v := range extra {
		fields[k] = v
	}
	err := c.do(ctx, http.MethodPost, path, nil, fields, out)
	if err == nil {
		return nil
	}
	// Unique-constraint conflict: someone else created it between our
	// lookup and the POST.
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		if ok, lookupErr := c.getOne(ctx, path, url.Values{"slug": {slug}}, out); lookupErr == nil && ok {
			return nil
		}
	}
	return err
}

// GetOrCreateManufacturer resolves a manufacturer by name.
func (c *Client) GetOrCreateManufacturer(ctx context.Context, name string) (*Manufacturer, error) {
	var m Manufacturer
	if err := c.getOrCreate(ctx, "/dcim/manufacturers/", name, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetOrCreateDeviceType resolves a device type by model under a
// manufacturer.
func (c *Client) GetOrCreateDeviceType(ctx context.Context, model string, manufacturerID int) (*DeviceType, error) {
	slug := canon.Slug(model)
	var dt DeviceType
	if ok, err := c.getOne(ctx, "/dcim/device-types/", url.Values{"slug": {slug}}, &dt); err != nil {
		return nil, err
	} else if ok {
		return &dt, nil
	}
	fields := map[string]interface{}{
		"model":        model,
		"slug":         slug,
		"manufacturer": manufacturerID,
	}
	if err := c.do(ctx, http.MethodPost, "/dcim/device-types/", nil, fields, &dt); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			if ok, lookupErr := c.getOne(ctx, "/dcim/device-types/", url.Values{"slug": {slug}}, &dt); lookupErr == nil && ok {
				return &dt, nil
			}
		}
		return nil, err
	}
	return &dt, nil
}

// GetOrCreateSite resolves a site by name.
func (c *Client) GetOrCreateSite(ctx context.Context, name string) (*Site, error) {
	var s Site
	if err := c.getOrCreate(ctx, "/dcim/sites/", name, map[string]interface{}{"status": "active"}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreateDeviceRole resolves a device role by name.
func (c *Client) GetOrCreateDeviceRole(ctx context.Context, name string) (*DeviceRole, error) {
	var r DeviceRole
	if err := c.getOrCreate(ctx, "/dcim/device-roles/", name, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetOrCreatePlatform resolves a platform by name (the collection
// platform tag, e.g. cisco_ios).
func (c *Client) GetOrCreatePlatform(ctx context.Context, name string) (*DevicePlatform, error) {
	var p DevicePlatform
	if err := c.getOrCreate(ctx, "/dcim/platforms/", name, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
