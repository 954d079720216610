package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/netsync-network/netsync/pkg/collector"
)

// reconcileVLANs ensures every VLAN referenced by a collected port
// exists. Identity is (site slug, vid): a device's VIDs resolve against
// its own site first, then the global VLANs. Duplicates already in the
// inventory keep the first record and are left alone. VLANs are never
// deleted: a VID no port references today may still be routed.
func (s *Syncer) reconcileVLANs(ctx context.Context, st *runState, results []*collector.DeviceResult) {
	want := make(map[vlanKey]bool)
	add := func(site string, vid int) {
		if vid > 0 {
			want[vlanKey{site: site, vid: vid}] = true
		}
	}
	for _, res := range results {
		site := st.sites[hostnameOf(res)]
		for _, intf := range res.Interfaces {
			add(site, intf.UntaggedVLAN)
			for _, vid := range intf.TaggedVLANs {
				add(site, vid)
			}
		}
	}

	keys := make([]vlanKey, 0, len(want))
	for key := range want {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].site != keys[j].site {
			return keys[i].site < keys[j].site
		}
		return keys[i].vid < keys[j].vid
	})

	for _, key := range keys {
		name := fmt.Sprintf("VLAN%d", key.vid)
		if _, ok := st.vlanFor(key.site, key.vid); ok {
			s.commit(ctx, st, EntityVLANs, &ObjectChange{
				Type:   ChangeSkip,
				Object: name,
				Reason: "already exists",
			})
			continue
		}
		key := key
		data := map[string]interface{}{
			"vid":    key.vid,
			"name":   name,
			"status": "active",
		}
		c := &ObjectChange{Type: ChangeCreate, Object: name, Data: data}
		c.apply = func(ctx context.Context) error {
			if siteName := st.siteNames[key.site]; siteName != "" {
				site, err := s.inv.GetOrCreateSite(ctx, siteName)
				if err != nil {
					return err
				}
				data["site"] = site.ID
			}
			created, err := s.inv.CreateVLAN(ctx, data)
			if err != nil {
				return err
			}
			st.vlans[key] = created
			return nil
		}
		s.commit(ctx, st, EntityVLANs, c)
	}
}
