package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive calculator session",
	Long: `Starts a calculator session. Keys are read from stdin as text lines
("1 + 2 =", "SIN", "SHIFT"), as NDJSON with --json, as single keystrokes with
--raw, or as little-endian uint32 key codes from a device or FIFO with --keypad.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		app, err := loadApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.RunOptions{}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Keypad, _ = cmd.Flags().GetString("keypad")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Full, _ = cmd.Flags().GetBool("full")
		opts.Raw, _ = cmd.Flags().GetBool("raw")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")

		return cli.Run(ctx, app, opts, cli.IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("angle", "", "Angle mode: deg or rad")
	runCmd.Flags().StringP("session", "s", "", "Session ID to resume and persist")
	runCmd.Flags().String("keypad", "", "Read binary key codes from this path")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("full", false, "With --json, write full views instead of diffs")
	runCmd.Flags().Bool("raw", false, "Read single keystrokes from the terminal")
	runCmd.Flags().BoolP("quiet", "q", false, "Plain output without banner or panel")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
