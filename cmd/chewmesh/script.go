package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/chewmesh/internal/batch"
)

var scriptCmd = &cobra.Command{
	Use:   "script <mesh>",
	Short: "Print the script generated for one input mesh",
	Long:  "Print the Amira/Avizo script for a file in the input directory without running it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(true)
		if err != nil {
			return err
		}
		return batch.New(cfg, nil, nil).Script(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
}
