package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cnetlab/cnetinit/internal/config"
	"github.com/cnetlab/cnetinit/internal/dockerd"
	"github.com/cnetlab/cnetinit/internal/nestenv"
	"github.com/cnetlab/cnetinit/internal/netprep"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Preflight: verify the image satisfies the bootstrap preconditions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.OutOrStdout())
	},
}

func runCheck(out io.Writer) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	env := nestenv.Detect()
	fmt.Fprintf(out, "nested execution:    %v (flag %q)\n", env.Nested, env.RawFlag)
	fmt.Fprintf(out, "container detected:  %v\n", nestenv.InContainer())
	fmt.Fprintln(out)

	// The switching daemons are hard preconditions; the rest is
	// best-effort tooling.
	type tool struct{ name, path string }
	required := []tool{
		{"ovsdb-server", cfg.OVS.DBServerPath},
		{"ovs-vswitchd", cfg.OVS.VswitchdPath},
		{"ovs-vsctl", cfg.OVS.VsctlPath},
	}
	optional := []tool{
		{"ovsdb-tool", cfg.OVS.DBToolPath},
		{"ovs-appctl", cfg.OVS.AppctlPath},
		{"modprobe", cfg.OVS.ModprobePath},
	}

	missing := 0
	for _, t := range required {
		resolved, err := exec.LookPath(t.path)
		if err != nil {
			fmt.Fprintf(out, "%-14s MISSING (%s)\n", t.name, t.path)
			missing++
			continue
		}
		fmt.Fprintf(out, "%-14s %s\n", t.name, resolved)
	}
	for _, t := range optional {
		resolved, err := exec.LookPath(t.path)
		if err != nil {
			fmt.Fprintf(out, "%-14s not found (%s), optional\n", t.name, t.path)
			continue
		}
		fmt.Fprintf(out, "%-14s %s\n", t.name, resolved)
	}

	if !env.Nested {
		if _, err := os.Stat("/sys/module/openvswitch"); err == nil {
			fmt.Fprintf(out, "%-14s loaded\n", "ovs module")
		} else {
			fmt.Fprintf(out, "%-14s not loaded (modprobe runs at boot)\n", "ovs module")
		}
	}

	fmt.Fprintln(out)
	if links, err := netprep.ListLinks(); err != nil {
		fmt.Fprintf(out, "links: %v\n", err)
	} else {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LINK\tTYPE\tUP\tMTU")
		for _, l := range links {
			fmt.Fprintf(w, "%s\t%s\t%v\t%d\n", l.Name, l.Type, l.Up, l.MTU)
		}
		w.Flush()
	}

	if env.Nested {
		fmt.Fprintln(out)
		dc, err := dockerd.New()
		if err != nil {
			fmt.Fprintf(out, "docker daemon:       unavailable (%v)\n", err)
		} else {
			defer dc.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := dc.Ping(ctx); err != nil {
				fmt.Fprintf(out, "docker daemon:       unreachable (%v)\n", err)
			} else if v, err := dc.ServerVersion(ctx); err == nil {
				fmt.Fprintf(out, "docker daemon:       reachable, version %s\n", v)
			} else {
				fmt.Fprintln(out, "docker daemon:       reachable")
			}
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d required binaries missing", missing)
	}
	return nil
}
