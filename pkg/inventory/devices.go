package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const devicesPath = "/dcim/devices/"

// ListDevices returns every device matching the filter. A nil filter
// returns the whole inventory.
func (c *Client) ListDevices(ctx context.Context, filter url.Values) ([]*Device, error) {
	var out []*Device
	err := c.list(ctx, devicesPath, filter, func(raw json.RawMessage) error {
		var d Device
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		out = append(out, &d)
		return nil
	})
	return out, err
}

// GetDeviceByName finds a device by its exact name, nil when absent.
func (c *Client) GetDeviceByName(ctx context.Context, name string) (*Device, error) {
	var d Device
	ok, err := c.getOne(ctx, devicesPath, url.Values{"name": {name}}, &d)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

// CreateDevice creates a device from a write payload of field names to
// values (foreign keys as numeric IDs).
func (c *Client) CreateDevice(ctx context.Context, fields map[string]interface{}) (*Device, error) {
	var d Device
	if err := c.do(ctx, http.MethodPost, devicesPath, nil, fields, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDevice patches the given fields on a device.
func (c *Client) UpdateDevice(ctx context.Context, id int, fields map[string]interface{}) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", devicesPath, id), nil, fields, nil)
}

// DeleteDevice removes a device.
func (c *Client) DeleteDevice(ctx context.Context, id int) error {
	return c.delete(ctx, devicesPath, id)
}
