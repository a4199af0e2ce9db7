package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

var evalCmd = &cobra.Command{
	Use:   "eval EXPRESSION...",
	Short: "Evaluate an expression and print the result",
	Example: `  abacus eval "2+3*4"
  abacus eval --angle rad "sin(pi/2)"
  abacus eval --var X=3 "X^2+1"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(context.Background(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.EvalOptions{}
		opts.Angle, _ = cmd.Flags().GetString("angle")
		opts.Vars, _ = cmd.Flags().GetStringArray("var")
		opts.RPN, _ = cmd.Flags().GetBool("rpn")

		if err := cli.Eval(app, opts, strings.Join(args, " "), os.Stdout); err != nil {
			return errors.New(cli.DescribeError(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().String("angle", "", "Angle mode for this evaluation: deg or rad")
	evalCmd.Flags().StringArray("var", nil, "Variable assignment NAME=VALUE (repeatable)")
	evalCmd.Flags().Bool("rpn", false, "Also print the postfix form")
}
