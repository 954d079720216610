package reconcile

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/netsync-network/netsync/pkg/canon"
	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/inventory"
	"github.com/netsync-network/netsync/pkg/model"
)

// pairKey identifies a cable by its two interface record IDs,
// order-independent.
type pairKey struct{ lo, hi int }

func newPairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// reconcileCables converges the physical topology from the neighbor
// tables. Only adjacencies where both endpoints resolve to interface
// records are actionable. A cable with an endpoint outside the
// collected scope is never deleted — the far side may simply not have
// been in this run.
func (s *Syncer) reconcileCables(ctx context.Context, st *runState, results []*collector.DeviceResult) {
	inScope := make(map[int]string) // interface record ID -> "host:ifname"
	for host, intfs := range st.interfaces {
		for name, nb := range intfs {
			inScope[nb.ID] = objectKey(host, name)
		}
	}

	desired := make(map[pairKey]string)
	for _, res := range results {
		local := st.interfaces[hostnameOf(res)]
		if local == nil {
			continue
		}
		for _, n := range res.Neighbors {
			if n.Type != model.NeighborByHostname {
				continue
			}
			a := local[n.LocalInterface]
			remote := st.interfaces[n.RemoteHostname]
			if a == nil || remote == nil {
				continue
			}
			b := remote[canon.LongName(n.RemotePort)]
			if b == nil || a.ID == b.ID {
				continue
			}
			key := newPairKey(a.ID, b.ID)
			if _, dup := desired[key]; !dup {
				desired[key] = fmt.Sprintf("%s <-> %s",
					objectKey(hostnameOf(res), n.LocalInterface),
					objectKey(n.RemoteHostname, canon.LongName(n.RemotePort)))
			}
		}
	}

	existing := make(map[int]*inventory.Cable)
	for _, res := range results {
		dev := st.devices[hostnameOf(res)]
		if dev == nil {
			continue
		}
		cables, err := s.inv.ListCables(ctx, dev.ID)
		if err != nil {
			st.errs = multierror.Append(st.errs, err)
			continue
		}
		for _, cb := range cables {
			existing[cb.ID] = cb
		}
	}

	matched := make(map[pairKey]bool)
	for _, cb := range existing {
		if key, ok := cableKey(cb); ok {
			for want := range desired {
				if key == want {
					matched[key] = true
				}
			}
		}
	}

	for key, label := range desired {
		if matched[key] {
			// Counted so a re-run distinguishes adjacencies that matched
			// by endpoint pair from newly created ones.
			s.commit(ctx, st, EntityCables, &ObjectChange{
				Type:   ChangeSkip,
				Object: label,
				Reason: "already exists",
			})
			continue
		}
		key := key
		c := &ObjectChange{Type: ChangeCreate, Object: label}
		c.apply = func(ctx context.Context) error {
			_, err := s.inv.CreateCable(ctx, key.lo, key.hi)
			return err
		}
		s.commit(ctx, st, EntityCables, c)
	}

	for _, cb := range existing {
		key, ok := cableKey(cb)
		if !ok {
			continue
		}
		if _, wanted := desired[key]; wanted {
			continue
		}
		aLabel, aIn := inScope[key.lo]
		bLabel, bIn := inScope[key.hi]
		if !aIn || !bIn {
			// One end is outside this run's scope; leave it alone.
			continue
		}
		label := fmt.Sprintf("%s <-> %s", aLabel, bLabel)
		if !s.policy.AllowDelete(EntityCables, label) {
			s.commit(ctx, st, EntityCables, &ObjectChange{
				Type:   ChangeSkip,
				Object: label,
				ID:     cb.ID,
				Reason: "stale but not covered by delete pattern",
			})
			continue
		}
		id := cb.ID
		c := &ObjectChange{Type: ChangeDelete, Object: label, ID: id}
		c.apply = func(ctx context.Context) error {
			return s.inv.DeleteCable(ctx, id)
		}
		s.commit(ctx, st, EntityCables, c)
	}
}

// cableKey extracts the unordered interface pair of a cable, when both
// ends are single interface terminations.
func cableKey(cb *inventory.Cable) (pairKey, bool) {
	one := func(ts []inventory.CableTermination) (int, bool) {
		if len(ts) != 1 || ts[0].ObjectType != "dcim.interface" {
			return 0, false
		}
		return ts[0].ObjectID, true
	}
	a, okA := one(cb.ATerminations)
	b, okB := one(cb.BTerminations)
	if !okA || !okB {
		return pairKey{}, false
	}
	return newPairKey(a, b), true
}
