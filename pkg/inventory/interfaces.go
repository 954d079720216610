package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const interfacesPath = "/dcim/interfaces/"

// ListInterfaces returns every interface of a device.
func (c *Client) ListInterfaces(ctx context.Context, deviceID int) ([]*Interface, error) {
	var out []*Interface
	filter := url.Values{"device_id": {strconv.Itoa(deviceID)}}
	err := c.list(ctx, interfacesPath, filter, func(raw json.RawMessage) error {
		var i Interface
		if err := json.Unmarshal(raw, &i); err != nil {
			return err
		}
		out = append(out, &i)
		return nil
	})
	return out, err
}

// CreateInterface creates an interface from a write payload.
func (c *Client) CreateInterface(ctx context.Context, fields map[string]interface{}) (*Interface, error) {
	var i Interface
	if err := c.do(ctx, http.MethodPost, interfacesPath, nil, fields, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

// UpdateInterface patches the given fields on an interface.
func (c *Client) UpdateInterface(ctx context.Context, id int, fields map[string]interface{}) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", interfacesPath, id), nil, fields, nil)
}

// DeleteInterface removes an interface.
func (c *Client) DeleteInterface(ctx context.Context, id int) error {
	return c.delete(ctx, interfacesPath, id)
}
