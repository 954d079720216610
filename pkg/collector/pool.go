package collector

import (
	"context"
	"sync"
	"time"

	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/util"
)

// DefaultPoolWorkers bounds concurrent device sessions when the
// configuration does not say otherwise. Device control planes
// rate-limit SSH; raising max_workers trades failures for speed.
const DefaultPoolWorkers = 5

// Run collects from every device with a bounded worker pool. Results
// keep the input order. Cancellation is cooperative: in-flight devices
// finish their current read, devices not yet started are recorded as
// not attempted.
func (c *Collector) Run(ctx context.Context, devices []model.Device) *Aggregate {
	agg := &Aggregate{
		Results: make([]*DeviceResult, len(devices)),
		Started: time.Now(),
	}
	defer func() { agg.Finished = time.Now() }()
	if len(devices) == 0 {
		return agg
	}

	workers := c.opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultPoolWorkers
	}
	if workers > len(devices) {
		workers = len(devices)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					agg.Results[i] = &DeviceResult{
						Host:     devices[i].Host,
						Platform: devices[i].Platform,
						Err:      util.ErrCancelled,
						Error:    util.ErrCancelled.Error(),
					}
				default:
					agg.Results[i] = c.CollectDevice(ctx, devices[i])
				}
			}
		}()
	}
	for i := range devices {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	util.WithOperation("collect").Infof("run finished: %d ok, %d failed, %d skipped",
		agg.Succeeded(), agg.Failed(), agg.Skipped())
	return agg
}
