package main

import (
	"github.com/aretw0/abacus/internal/cli"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run the interactive calculator",
	Long: `Starts an interactive session. Keys are read one line at a time ("7 + 8 =");
--json switches to JSON-lines for scripts and --keypad opens the full-screen keypad.

Sessions are kept in the configured store. With the redis driver, passing the
same --session resumes it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		keypadMode, _ := cmd.Flags().GetBool("keypad")

		return cli.RunREPL(cmd.Context(), cfg, cli.RunOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			Keypad:    keypadMode,
			Debug:     debugFlag(cmd),
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringP("session", "s", "", "Session ID to resume or create (default: a new UUID)")
	replCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	replCmd.Flags().Bool("keypad", false, "Run the full-screen keypad")

	// 'repl' is the default when no command is provided.
	rootCmd.RunE = replCmd.RunE
	rootCmd.Flags().AddFlagSet(replCmd.Flags())
}
