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
	inventoryItemsPath = "/dcim/inventory-items/"
	cablesPath         = "/dcim/cables/"
)

// ListInventoryItems returns every hardware component of a device.
func (c *Client) ListInventoryItems(ctx context.Context, deviceID int) ([]*InventoryItem, error) {
	var out []*InventoryItem
	filter := url.Values{"device_id": {strconv.Itoa(deviceID)}}
	err := c.list(ctx, inventoryItemsPath, filter, func(raw json.RawMessage) error {
		var item InventoryItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		out = append(out, &item)
		return nil
	})
	return out, err
}

// CreateInventoryItems bulk-creates components; the API accepts a list
// payload on the same endpoint.
func (c *Client) CreateInventoryItems(ctx context.Context, items []map[string]interface{}) error {
	if len(items) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, inventoryItemsPath, nil, items, nil)
}

// UpdateInventoryItem patches the given fields on a component.
func (c *Client) UpdateInventoryItem(ctx context.Context, id int, fields map[string]interface{}) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", inventoryItemsPath, id), nil, fields, nil)
}

// DeleteInventoryItem removes a component.
func (c *Client) DeleteInventoryItem(ctx context.Context, id int) error {
	return c.delete(ctx, inventoryItemsPath, id)
}

// ListCables returns the cables terminating on a device's interfaces.
func (c *Client) ListCables(ctx context.Context, deviceID int) ([]*Cable, error) {
	var out []*Cable
	filter := url.Values{"device_id": {strconv.Itoa(deviceID)}}
	err := c.list(ctx, cablesPath, filter, func(raw json.RawMessage) error {
		var cb Cable
		if err := json.Unmarshal(raw, &cb); err != nil {
			return err
		}
		out = append(out, &cb)
		return nil
	})
	return out, err
}

// CreateCable connects two interfaces.
func (c *Client) CreateCable(ctx context.Context, aInterfaceID, bInterfaceID int) (*Cable, error) {
	payload := map[string]interface{}{
		"a_terminations": []CableTermination{{ObjectType: "dcim.interface", ObjectID: aInterfaceID}},
		"b_terminations": []CableTermination{{ObjectType: "dcim.interface", ObjectID: bInterfaceID}},
		"status":         "connected",
	}
	var cb Cable
	if err := c.do(ctx, http.MethodPost, cablesPath, nil, payload, &cb); err != nil {
		return nil, err
	}
	return &cb, nil
}

// DeleteCable removes a cable.
func (c *Client) DeleteCable(ctx context.Context, id int) error {
	return c.delete(ctx, cablesPath, id)
}
