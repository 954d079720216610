package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	ipAddressesPath = "/ipam/ip-addresses/"
	vlansPath       = "/ipam/vlans/"
)

// ListIPAddresses returns the addresses matching the filter
// ("device_id", "address", ...).
func (c *Client) ListIPAddresses(ctx context.Context, filter url.Values) ([]*IPAddress, error) {
	var out []*IPAddress
	err := c.list(ctx, ipAddressesPath, filter, func(raw json.RawMessage) error {
		var a IPAddress
		if err := json.Unmarshal(raw, &a); err != nil {
			return err
		}
		out = append(out, &a)
		return nil
	})
	return out, err
}

// GetIPByAddress finds an address record by its exact CIDR string, nil
// when absent.
func (c *Client) GetIPByAddress(ctx context.Context, cidr string) (*IPAddress, error) {
	var a IPAddress
	ok, err := c.getOne(ctx, ipAddressesPath, url.Values{"address": {cidr}}, &a)
	if err != nil || !ok {
		return nil, err
	}
	return &a, nil
}

// CreateIPAddress creates an address from a write payload.
func (c *Client) CreateIPAddress(ctx context.Context, fields map[string]interface{}) (*IPAddress, error) {
	var a IPAddress
	if err := c.do(ctx, http.MethodPost, ipAddressesPath, nil, fields, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateIPAddress patches the given fields on an address.
func (c *Client) UpdateIPAddress(ctx context.Context, id int, fields map[string]interface{}) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", ipAddressesPath, id), nil, fields, nil)
}

// DeleteIPAddress removes an address.
func (c *Client) DeleteIPAddress(ctx context.Context, id int) error {
	return c.delete(ctx, ipAddressesPath, id)
}

// ListVLANs returns the VLANs of a site; siteID 0 lists the global ones
// too.
func (c *Client) ListVLANs(ctx context.Context, siteID int) ([]*VLAN, error) {
	filter := url.Values{}
	if siteID > 0 {
		filter.Set("site_id", strconv.Itoa(siteID))
	}
	var out []*VLAN
	err := c.list(ctx, vlansPath, filter, func(raw json.RawMessage) error {
		var v VLAN
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		out = append(out, &v)
		return nil
	})
	return out, err
}

// CreateVLAN creates a VLAN from a write payload.
func (c *Client) CreateVLAN(ctx context.Context, fields map[string]interface{}) (*VLAN, error) {
	var v VLAN
	if err := c.do(ctx, http.MethodPost, vlansPath, nil, fields, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVLAN patches the given fields on a VLAN.
func (c *Client) UpdateVLAN(ctx context.Context, id int, fields map[string]interface{}) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", vlansPath, id), nil, fields, nil)
}
