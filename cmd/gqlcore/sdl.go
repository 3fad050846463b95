package main

import (
	"fmt"
	"os"

	schema "github.com/hanpama/gqlcore/internal/schema"
	starwars "github.com/hanpama/gqlcore/internal/starwars"
	"github.com/spf13/cobra"
)

func newSDLCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "sdl",
		Short: "Print the Star Wars example schema in SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := starwars.NewSchema(starwars.NewStore(), schema.StrategySerial)
			if err != nil {
				return err
			}
			sdl := schema.Render(sch)
			if outFile == "" {
				fmt.Fprint(cmd.OutOrStdout(), sdl)
				return nil
			}
			return os.WriteFile(outFile, []byte(sdl), 0644)
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write SDL to file (default: stdout)")
	return cmd
}
