// Command seedgen grava a carga inicial padrão de todos num arquivo JSON que o
// todo-api carrega com --seed-file.
package main

import (
	"fmt"
	"os"

	"todo-api/todos/infra"

	"github.com/spf13/cobra"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:          "seedgen",
		Short:        "Write the default todo seed as JSON",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := infra.WriteSeedFile(out, infra.DefaultSeed(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d todos to %s\n", len(infra.DefaultSeed()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "todos.json", "output file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
