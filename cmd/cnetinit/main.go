package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cnetlab/cnetinit/internal/config"
)

var Version = "0.3.0"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "cnetinit",
	Short: "Entrypoint bootstrapper for the network-emulation testbed image",
	Long: `cnetinit runs as PID 1 inside the testbed container image. It brings
up the Open vSwitch daemons the emulation payload depends on (ovsdb-server
first, then ovs-vswitchd), waits until they answer, and then hands the
process over to the container's command.

Installed as ENTRYPOINT, any container command that is not a cnetinit
subcommand is treated as the payload of "cnetinit run".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"path to cnetinit.yaml (default: $"+config.EnvConfigPath+")")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
}

// knownCommand reports whether arg addresses cnetinit itself rather than
// being the first word of a payload command line.
func knownCommand(arg string) bool {
	switch arg {
	case "run", "check", "history", "help", "completion", "-h", "--help", "-v", "--version", "--config":
		return true
	}
	return strings.HasPrefix(arg, "--config=")
}

// routeArgs implements the ENTRYPOINT contract: the container CMD is the
// payload, so anything that does not address cnetinit itself is routed to
// "run" verbatim. No CMD at all means "run the configured default".
func routeArgs(args []string) []string {
	if len(args) == 1 {
		return append(args, "run")
	}
	if !knownCommand(args[1]) {
		return append([]string{args[0], "run", "--"}, args[1:]...)
	}
	return args
}

func main() {
	os.Args = routeArgs(os.Args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	return os.Getenv(config.EnvConfigPath)
}
