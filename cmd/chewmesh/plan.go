package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/chewmesh/internal/batch"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "List the outputs a run would produce",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := setup(true)
	if err != nil {
		return err
	}

	plans, err := batch.New(cfg, nil, nil).Plan()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	for _, p := range plans {
		switch {
		case p.Collision != "":
			fmt.Fprintf(out, "%s (skipped: outputs collide with %s)\n", p.Name, p.Collision)
			continue
		case p.Staged:
			fmt.Fprintf(out, "%s (as %s)\n", p.Name, p.File)
		default:
			fmt.Fprintln(out, p.Name)
		}
		for _, o := range p.Outputs {
			fmt.Fprintf(out, "  %-8s %-6d %s\n", o.Simplify, o.Smooth, o.Name)
		}
		total += len(p.Outputs)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\n(%d meshes, %d outputs into %s)\n", len(plans), total, cfg.Paths.OutputDir)
	return nil
}
