package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/cnetlab/cnetinit/internal/config"
	"github.com/cnetlab/cnetinit/internal/journal"
)

var historyCount int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent boots recorded in the boot journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.OutOrStdout())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 10, "number of boots to show")
}

func runHistory(out io.Writer) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.JournalPath == "" {
		return fmt.Errorf("boot journal disabled (journal_path is empty)")
	}

	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer jnl.Close()

	entries, err := jnl.Recent(historyCount)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BOOT ID\tWHEN\tNESTED\tDB\tSWITCH\tOUTCOME\tEXIT\tPAYLOAD")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s ago\t%v\t%dms\t%dms\t%s\t%d\t%s\n",
			shortID(e.BootID),
			units.HumanDuration(time.Since(e.StartedAt)),
			e.Nested,
			e.DBReadyMs,
			e.SwitchReadyMs,
			e.Outcome,
			e.ExitCode,
			e.Payload,
		)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
