// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/siemens/dnsdoctor/check"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	resolverAddr    *string
	spinnerInterval *time.Duration
	workerNumber    *uint
	unprivileged    *bool
	debug           *bool
)

func newRootCmd() (rootCmd *cobra.Command) {
	rootCmd = &cobra.Command{
		Use:     "dnsdoctor [flags] [domain]",
		Short:   "dnsdoctor runs a fixed battery of DNS and network diagnostics against a single domain",
		Version: "1.0",
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if *workerNumber < 1 || *workerNumber > 10 {
				return fmt.Errorf("--workers out of range [1..10]")
			}
			if *spinnerInterval < 10*time.Millisecond {
				return fmt.Errorf("--spinner must be at least 10ms")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if *debug {
				log.SetLevel(log.DebugLevel)
				log.Debugf("debug logging enabled")
			}
			domain := ""
			if len(args) == 1 {
				domain = args[0]
			} else {
				domain = promptDomain(os.Stdin, os.Stdout)
			}
			ctx := context.Background()
			check.New(os.Stdout).Diagnose(ctx, domain)
			fmt.Println()
			fmt.Println(check.Header("Address reachability"))
			if err := VerifyAndReport(ctx, domain); err != nil {
				// advisory only; the diagnostic run as such has completed.
				fmt.Println(check.Warn(err.Error()))
			}
			return nil
		},
	}
	// Sets up the flags.
	debug = rootCmd.PersistentFlags().Bool(
		"debug", false, "enable debugging output")
	resolverAddr = rootCmd.PersistentFlags().String(
		"resolver", "", "resolver address as host:port (default: first /etc/resolv.conf server)")
	spinnerInterval = rootCmd.PersistentFlags().Duration(
		"spinner", 100*time.Millisecond, "spinner interval")
	workerNumber = rootCmd.PersistentFlags().Uint(
		"workers", 5, "number of DNS and ping workers")
	unprivileged = rootCmd.PersistentFlags().Bool(
		"unprivileged", false, "use UDP-based pings instead of raw ICMP")
	return
}
