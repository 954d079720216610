package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, "test-token", Options{
		RetryDelay: time.Millisecond,
		PageSize:   2,
		VerifySSL:  true,
	})
	return c, srv
}

func TestListDrainsPagination(t *testing.T) {
	devices := []Device{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}
	var requests int

	var c *Client
	var srv *httptest.Server
	c, srv = testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.Header.Get("Authorization"); got != "Token test-token" {
			t.Errorf("auth header = %q", got)
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		end := offset + limit
		if end > len(devices) {
			end = len(devices)
		}
		page := map[string]interface{}{
			"count":   len(devices),
			"results": devices[offset:end],
		}
		if end < len(devices) {
			next := fmt.Sprintf("%s/api/dcim/devices/?offset=%d", srv.URL, end)
			page["next"] = next
		}
		json.NewEncoder(w).Encode(page)
	}))

	got, err := c.ListDevices(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d devices, want 3", len(got))
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2 pages", requests)
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var hits int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			http.Error(w, `{"detail": "worker restarting"}`, http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Device{ID: 7, Name: "sw1"})
	}))

	d, err := c.CreateDevice(context.Background(), map[string]interface{}{"name": "sw1"})
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	if d.ID != 7 {
		t.Errorf("id = %d", d.ID)
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 2 retries then success", hits)
	}
}

func TestValidationErrorIsTerminal(t *testing.T) {
	var hits int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"name": ["This field may not be blank."]}`)
	}))

	_, err := c.CreateDevice(context.Background(), map[string]interface{}{"name": ""})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if vErr.Retryable() {
		t.Error("validation errors must not be retryable")
	}
	if hits != 1 {
		t.Errorf("hits = %d, want no retries", hits)
	}
	if msgs := vErr.Fields["name"]; len(msgs) != 1 {
		t.Errorf("field messages = %v", vErr.Fields)
	}
}

func TestUnauthorizedIsTerminal(t *testing.T) {
	var hits int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, `{"detail": "Invalid token."}`, http.StatusForbidden)
	}))

	_, err := c.GetDeviceByName(context.Background(), "sw1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Retryable() {
		t.Error("4xx must not be retryable")
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestGetOrCreateConflictRelooksUp(t *testing.T) {
	// Lookups find nothing, the POST hits a unique-constraint conflict,
	// and the follow-up lookup finds the winner.
	var posted bool
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posted = true
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"slug": ["manufacturer with this slug already exists."]}`)
			return
		}
		if posted && r.URL.Query().Get("slug") == "cisco" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"count":   1,
				"results": []Manufacturer{{ID: 12, Name: "Cisco", Slug: "cisco"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"count": 0, "results": []Manufacturer{}})
	}))

	m, err := c.GetOrCreateManufacturer(context.Background(), "Cisco")
	if err != nil {
		t.Fatalf("GetOrCreateManufacturer: %v", err)
	}
	if m.ID != 12 {
		t.Errorf("id = %d, want the conflicting winner", m.ID)
	}
}

func TestDeleteToleratesGone(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Not found."}`, http.StatusNotFound)
	}))
	if err := c.DeleteDevice(context.Background(), 99); err != nil {
		t.Fatalf("DeleteDevice on missing object: %v", err)
	}
}

func TestCableSameEnds(t *testing.T) {
	cable := &Cable{
		ATerminations: []CableTermination{{ObjectType: "dcim.interface", ObjectID: 10}},
		BTerminations: []CableTermination{{ObjectType: "dcim.interface", ObjectID: 20}},
	}
	if !cable.SameEnds(10, 20) || !cable.SameEnds(20, 10) {
		t.Error("terminations must compare unordered")
	}
	if cable.SameEnds(10, 30) {
		t.Error("mismatched ends reported equal")
	}
}
