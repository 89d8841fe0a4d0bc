package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/termstore/store"
	"github.com/joshuapare/termstore/store/list"
	"github.com/joshuapare/termstore/store/printer"
)

var (
	printDepth int
	printAnnos bool
)

func init() {
	cmd := newPrintCmd()
	cmd.Flags().IntVar(&printDepth, "depth", 0, "Limit nesting depth (0 = unlimited)")
	cmd.Flags().BoolVar(&printAnnos, "annotations", true, "Show annotations")
	rootCmd.AddCommand(cmd)
}

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Build and print a sample term",
		Long: `The print command builds a small term exercising every kind, shows how
structurally equal pieces are shared, and prints it.

Example:
  termctl print
  termctl print --json --depth 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint()
		},
	}
	return cmd
}

// buildSample returns point(1.5,[3,2,1],<int>,#blob){[pos,7]}.
func buildSample(h *store.Heap) store.Term {
	f := h.Frame()
	defer f.Release()

	l := f.Hold(list.FromSlice(h, []store.Term{
		f.Hold(h.MakeInt(3)), f.Hold(h.MakeInt(2)), f.Hold(h.MakeInt(1)),
	}))
	ph := f.Hold(h.MakePlaceholder(f.Hold(h.MakeApplication(h.InternSymbol("int", 0, false)))))
	blob := f.Hold(h.MakeBlob([]byte("blob")))
	x := f.Hold(h.MakeReal(1.5))

	point := h.InternSymbol("point", 4, false)
	t := f.Hold(h.MakeApplication(point, x, l, ph, blob))

	label := f.Hold(h.MakeApplication(h.InternSymbol("pos", 0, false)))
	return h.SetAnnotation(t, label, f.Hold(h.MakeInt(7)))
}

func runPrint() error {
	f, err := loadConfig()
	if err != nil {
		return err
	}
	h := store.New(&f.Heap)
	defer h.Close()

	t := buildSample(h)
	h.Protect(&t)
	defer h.Unprotect(&t)

	opts := printer.DefaultOptions()
	opts.MaxDepth = printDepth
	opts.ShowAnnotations = printAnnos
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(h, stdout, opts).Print(t)
}
