package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/didact/internal/demo"
	"github.com/vango-dev/didact/pkg/fiber"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		clicks     int
		toggle     bool
		add        []string
		sliceUnits int
		title      string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render the demo headless and print the result",
		Long: `Render the demo app against an in-memory document, apply the
requested interactions, then print the resulting HTML and commit
statistics.

Examples:
  didact run
  didact run --clicks 3 --toggle
  didact run --add milk --add eggs --slice-units 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clicks < 0 || sliceUnits < 0 {
				return usageError("--clicks and --slice-units must not be negative")
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			h := demo.NewHeadless(logger, fiber.WithYieldThreshold(cfg.Scheduler.YieldThreshold))
			h.SliceUnits = sliceUnits
			if err := h.Mount(demo.Root(title)); err != nil {
				return err
			}

			for i := 0; i < clicks; i++ {
				if err := h.Click("increment"); err != nil {
					return err
				}
			}
			if toggle {
				if err := h.Click("toggle"); err != nil {
					return err
				}
			}
			for _, item := range add {
				if err := h.Input("draft", item); err != nil {
					return err
				}
				if err := h.Click("add"); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, h.HTML())
			s := h.Stats()
			fmt.Fprintf(out, "generations=%d commits=%d slices=%d placements=%d updates=%d deletions=%d\n",
				h.Runtime.Generation(), s.Commits, s.Slices, s.Placements, s.Updates, s.Deletions)
			return nil
		},
	}

	cmd.Flags().IntVarP(&clicks, "clicks", "n", 0, "Click the counter's increment button N times")
	cmd.Flags().BoolVar(&toggle, "toggle", false, "Click the toggle once")
	cmd.Flags().StringArrayVar(&add, "add", nil, "Add a todo item (repeatable)")
	cmd.Flags().IntVar(&sliceUnits, "slice-units", 0, "Units of work per scheduler slice (0 = unlimited)")
	cmd.Flags().StringVar(&title, "title", "didact", "Heading of the demo app")

	return cmd
}
