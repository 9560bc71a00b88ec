package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <keys>...",
	Short: "Evaluate keys in a throwaway session and print the display",
	Example: `  abacus eval "7+8="
  abacus eval 9 / 2 = --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := logging.NewNop()
		if debugFlag(cmd) {
			logger, _ = cli.NewLogger(cfg, true)
		}

		view, err := cli.Eval(cmd.Context(), cli.NewEngine(cfg, logger), strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}

		fmt.Fprintln(out, view.Display)
		if view.Message != "" {
			return errors.New(view.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Bool("json", false, "Print the full view as JSON")
}
