package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stemsi/exstem-rotation/internal/logger"
	"github.com/stemsi/exstem-rotation/internal/rotation"
	"github.com/stemsi/exstem-rotation/internal/specfile"
)

// requestFlags are the learner-identity flags shared by select and preview.
type requestFlags struct {
	seed     string
	user     string
	resource string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.seed, "seed", "", "base seed (defaults to the file name without extension)")
	cmd.Flags().StringVar(&f.user, "user", "", "learner sourced id")
	cmd.Flags().StringVar(&f.resource, "resource", "", "resource sourced id")
}

func (f *requestFlags) request(path string, attempt int) rotation.Request {
	seed := f.seed
	if seed == "" {
		seed = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return rotation.Request{
		BaseSeed:          seed,
		AttemptNumber:     attempt,
		UserSourcedID:     f.user,
		ResourceSourcedID: f.resource,
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		asJSON   bool
	)

	root := &cobra.Command{
		Use:           "rotate",
		Short:         "Inspect deterministic question rotation for a test definition",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")

	load := func(cmd *cobra.Command, path string) (*rotation.TestSpec, error) {
		log := logger.New(cmd.ErrOrStderr(), logLevel, "pretty")
		spec, err := specfile.Load(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", path).Int("sections", len(spec.Sections)).Msg("Spec loaded")
		return spec, nil
	}

	root.AddCommand(newPlanCmd(load, &asJSON))
	root.AddCommand(newSelectCmd(load, &asJSON))
	root.AddCommand(newPreviewCmd(load, &asJSON))
	return root
}

type loadFunc func(cmd *cobra.Command, path string) (*rotation.TestSpec, error)

func newPlanCmd(load loadFunc, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <file>",
		Short: "Show section sizes, picks per attempt and cycle lengths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			plans := rotation.Plan(*spec)
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), plans)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SECTION\tSHUFFLE\tSIZE\tPER ATTEMPT\tCYCLE")
			for _, p := range plans {
				fmt.Fprintf(tw, "%s\t%t\t%d\t%d\t%d\n", p.Identifier, p.Shuffle, p.Size, p.PerAttempt, p.CycleLength)
			}
			return tw.Flush()
		},
	}
}

func newSelectCmd(load loadFunc, asJSON *bool) *cobra.Command {
	var (
		flags   requestFlags
		attempt int
	)
	cmd := &cobra.Command{
		Use:   "select <file>",
		Short: "Print the item identifiers of one attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			ids, err := rotation.NewEngine(nil).Identifiers(*spec, bankOf(spec), flags.request(args[0], attempt))
			if err != nil {
				return err
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), ids)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&attempt, "attempt", 1, "attempt number, starting at 1")
	return cmd
}

type attemptRow struct {
	Attempt     int      `json:"attempt"`
	Identifiers []string `json:"identifiers"`
	New         int      `json:"new"`
	Covered     int      `json:"covered"`
}

func newPreviewCmd(load loadFunc, asJSON *bool) *cobra.Command {
	var (
		flags    requestFlags
		attempts int
	)
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Print the selections of the first N attempts with coverage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if attempts < 1 {
				return fmt.Errorf("--attempts must be at least 1")
			}
			spec, err := load(cmd, args[0])
			if err != nil {
				return err
			}

			engine := rotation.NewEngine(nil)
			bank := bankOf(spec)
			seen := make(map[string]struct{})
			rows := make([]attemptRow, 0, attempts)
			for a := 1; a <= attempts; a++ {
				ids, err := engine.Identifiers(*spec, bank, flags.request(args[0], a))
				if err != nil {
					return err
				}
				fresh := 0
				for _, id := range ids {
					if _, ok := seen[id]; !ok {
						seen[id] = struct{}{}
						fresh++
					}
				}
				rows = append(rows, attemptRow{Attempt: a, Identifiers: ids, New: fresh, Covered: len(seen)})
			}

			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ATTEMPT\tNEW\tCOVERED\tITEMS")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%d\t%d/%d\t%s\n", r.Attempt, r.New, r.Covered, len(bank), strings.Join(r.Identifiers, " "))
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&attempts, "attempts", 5, "number of attempts to preview")
	return cmd
}

// bankOf lists every identifier the test file references, in document order, so
// offline runs never hit a missing reference.
func bankOf(spec *rotation.TestSpec) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, sec := range spec.Sections {
		for _, id := range sec.ItemIdentifiers {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
