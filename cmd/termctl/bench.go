package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/joshuapare/termstore/internal/config"
	"github.com/joshuapare/termstore/store"
)

var (
	benchTerms     int
	benchRetain    float64
	benchWidth     int
	benchSeed      int64
	benchLowMemory bool
	benchCheck     bool
	benchFormat    string
	benchOut       string
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchTerms, "terms", 0, "Number of application terms to construct")
	cmd.Flags().Float64Var(&benchRetain, "retain", 0, "Fraction of terms kept reachable (0-1)")
	cmd.Flags().IntVar(&benchWidth, "width", 0, "Arity of the constructed applications")
	cmd.Flags().Int64Var(&benchSeed, "seed", 0, "Random seed")
	cmd.Flags().BoolVar(&benchLowMemory, "low-memory", false, "Use the low-memory tuning preset")
	cmd.Flags().BoolVar(&benchCheck, "check", false, "Verify heap consistency after every collection")
	cmd.Flags().StringVarP(&benchFormat, "format", "f", "text", "Output format: text, json, cbor")
	cmd.Flags().StringVarP(&benchOut, "output", "o", "", "Write the report to a file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic allocation workload",
		Long: `The bench command builds random application terms, keeps a fraction of
them reachable, and reports what the collector did.

Example:
  termctl bench --terms 5000000 --retain 0.05
  termctl bench --low-memory --check
  termctl bench --format cbor -o stats.cbor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd)
		},
	}
	return cmd
}

// BenchReport is the bench command's output.
type BenchReport struct {
	Workload config.Bench  `json:"workload"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Retained int           `json:"retained"`
	Stats    store.Stats   `json:"stats"`
}

func runBench(cmd *cobra.Command) error {
	f, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("terms") {
		f.Bench.Terms = benchTerms
	}
	if flags.Changed("retain") {
		f.Bench.Retain = benchRetain
	}
	if flags.Changed("width") {
		f.Bench.Width = benchWidth
	}
	if flags.Changed("seed") {
		f.Bench.Seed = benchSeed
	}
	if benchLowMemory {
		f.Heap.LowMemory = true
	}
	if benchCheck {
		f.Heap.CheckConsistency = true
	}
	if err := f.Validate(); err != nil {
		return err
	}
	format := benchFormat
	if jsonOut {
		format = "json"
	}
	if format != "text" && format != "json" && format != "cbor" {
		return fmt.Errorf("unknown format %q (want text, json or cbor)", format)
	}

	printVerbose("Running %d terms, retain %.2f, width %d\n", f.Bench.Terms, f.Bench.Retain, f.Bench.Width)
	report := runWorkload(f)

	switch format {
	case "json":
		return withOutput(func() error { return printJSON(report) })
	case "cbor":
		data, err := cbor.Marshal(report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return withOutput(func() error {
			_, err := stdout.Write(data)
			return err
		})
	default:
		return withOutput(func() error {
			printInfo("%d terms in %s, %d retained\n\n", report.Workload.Terms, report.Elapsed, report.Retained)
			if quiet {
				return nil
			}
			_, err := report.Stats.WriteTo(stdout)
			return err
		})
	}
}

// runWorkload builds the configured terms on a fresh heap.
func runWorkload(f *config.File) BenchReport {
	opts := f.Heap
	h := store.New(&opts)
	defer h.Close()

	w := f.Bench
	rng := rand.New(rand.NewSource(w.Seed))
	start := time.Now()

	keep := make([]store.Term, int(float64(w.Terms)*w.Retain))
	h.ProtectArray(keep)
	defer h.UnprotectArray(keep)
	kept := 0

	args := make([]store.Term, w.Width)
	h.ProtectArray(args)
	defer h.UnprotectArray(args)

	sym := h.InternSymbol("node", w.Width, false)
	h.ProtectSymbol(sym)
	defer h.UnprotectSymbol(sym)

	for i := 0; i < w.Terms; i++ {
		for j := range args {
			args[j] = store.Nil
		}
		for j := range args {
			if j == 0 && kept > 0 && rng.Intn(4) == 0 {
				args[j] = keep[rng.Intn(kept)]
				continue
			}
			args[j] = h.MakeInt(rng.Int63n(1 << 20))
		}
		t := h.MakeApplicationN(sym, args)
		if kept < len(keep) && rng.Float64() < w.Retain {
			keep[kept] = t
			kept++
		}
	}
	h.Collect()

	return BenchReport{
		Workload: w,
		Elapsed:  time.Since(start),
		Retained: kept,
		Stats:    h.Stats(),
	}
}

// withOutput runs fn with stdout redirected to --output when set.
func withOutput(fn func() error) error {
	if benchOut == "" {
		return fn()
	}
	file, err := os.Create(benchOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", benchOut, err)
	}
	prev := stdout
	stdout = file
	defer func() { stdout = prev }()

	if err := fn(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
