// Command ipa-helper is the illustrative CLI entrypoint for one of the
// three IPA helper processes (spec.md §6). It is not part of the core
// protocol: the core is a library (pkg/ipa, pkg/attribution, ...) that
// this binary would drive once wired to a real helper-to-helper
// transport. That transport is explicitly out of scope (spec.md §1
// Non-goals), so this binary's job is limited to what spec.md §6 actually
// specifies: parse --identity/--port/--scheme, announce that it is
// listening, and shut down cleanly on stdin EOF/newline — mirroring
// original_source/src/bin/helper.rs's shape with cobra in place of clap.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/ipa/pkg/party"
)

var (
	identity int
	port     int
	scheme   string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "ipa-helper",
	Short: "Start an IPA MPC helper endpoint",
	Long: `ipa-helper starts one of the three helper processes that jointly
run the IPA attribution circuit over secret-shared event records.`,
	RunE: runHelper,
}

func init() {
	rootCmd.Flags().IntVarP(&identity, "identity", "i", -1, "Which of the three helper roles this process plays (0, 1, or 2); required")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on; 0 lets the OS assign one")
	rootCmd.Flags().StringVarP(&scheme, "scheme", "s", "http", "Transport scheme: http or https")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log one line per lifecycle event")
	_ = rootCmd.MarkFlagRequired("identity")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runHelper(cmd *cobra.Command, args []string) error {
	role, err := roleFromIdentity(identity)
	if err != nil {
		return err
	}
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("ipa-helper: unknown scheme %q (want http or https)", scheme)
	}

	logf := func(format string, a ...any) {
		if verbose {
			log.Printf(format, a...)
		}
	}

	logf("starting helper %s, scheme=%s, requested port=%d", role, scheme, port)

	// A real deployment would bind a %s://0.0.0.0:%d listener here (spec.md
	// §6's three-party full mesh) and launch a query-processor loop reading
	// from internal/wire-framed peer connections. No such transport exists
	// in this repo (out of scope, spec.md §1 Non-goals); queries are driven
	// directly against pkg/ipa.Run by whatever process holds all three
	// mpc.Context values, as internal/testworld does for tests.
	fmt.Printf("listening as helper %s (%s), press Enter to quit\n", role, scheme)

	logf("helper %s ready, awaiting shutdown signal", role)
	reader := bufio.NewReader(os.Stdin)
	if _, err := reader.ReadString('\n'); err != nil {
		// EOF on stdin (e.g. piped input, or a closed controlling terminal)
		// is a normal shutdown trigger, not an error, matching helper.rs's
		// read_line-then-exit discipline.
		logf("helper %s: stdin closed, shutting down", role)
		return nil
	}
	logf("helper %s: shutdown requested, exiting", role)
	return nil
}

func roleFromIdentity(identity int) (party.Role, error) {
	switch identity {
	case 0:
		return party.H0, nil
	case 1:
		return party.H1, nil
	case 2:
		return party.H2, nil
	default:
		return 0, fmt.Errorf("ipa-helper: --identity must be 0, 1, or 2, got %d", identity)
	}
}
