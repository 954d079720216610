package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsync-network/netsync/pkg/cli"
	"github.com/netsync-network/netsync/pkg/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		op     string
		status string
		limit  int
		stats  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := history.NewStore(cfg.HistoryFile)

			if stats {
				return printHistoryStats(store)
			}

			entries, err := store.List(history.Filter{Operation: op, Status: status, Limit: limit})
			if err != nil {
				return err
			}
			tbl := cli.NewTable("TIME", "OPERATION", "STATUS", "DEVICES", "OK/FAIL", "CHANGES", "SUMMARY")
			for _, e := range entries {
				changes := ""
				if e.Operation == "sync" {
					changes = strconv.Itoa(e.Changes)
				}
				tbl.Row(
					e.Finished.Local().Format("2006-01-02 15:04:05"),
					e.Operation,
					cli.Status(e.Status),
					strconv.Itoa(e.DeviceCount),
					fmt.Sprintf("%d/%d", e.Succeeded, e.Failed),
					changes,
					e.Summary,
				)
			}
			tbl.Flush()
			if len(entries) == 0 {
				fmt.Println("no matching history entries")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&op, "op", "", "filter by operation (collect, sync, backup)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (success, partial, error)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show (0 = all)")
	cmd.Flags().BoolVar(&stats, "stats", false, "show aggregate statistics instead of entries")
	return cmd
}

func printHistoryStats(store *history.Store) error {
	st, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("%d runs recorded, %d in the last 24h\n", st.Total, st.Last24h)
	if st.Total == 0 {
		return nil
	}
	fmt.Printf("oldest %s, newest %s\n\n",
		st.Oldest.Local().Format(time.RFC3339), st.Newest.Local().Format(time.RFC3339))

	tbl := cli.NewTable("OPERATION", "RUNS")
	for _, op := range sortedKeys(st.ByOperation) {
		tbl.Row(op, strconv.Itoa(st.ByOperation[op]))
	}
	tbl.Flush()
	fmt.Println()
	tbl = cli.NewTable("STATUS", "RUNS")
	for _, s := range sortedKeys(st.ByStatus) {
		tbl.Row(cli.Status(s), strconv.Itoa(st.ByStatus[s]))
	}
	tbl.Flush()
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
