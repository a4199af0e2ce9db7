package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/presentation/tui"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the keypad reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		render := tui.NewRenderer()
		out, err := render(tui.KeyReference())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
