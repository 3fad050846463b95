package main

import (
	"errors"
	"fmt"
	"os"

	engine "github.com/hanpama/gqlcore/internal/engine"
	starwars "github.com/hanpama/gqlcore/internal/starwars"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var (
		file          string
		variables     string
		operationName string
		strategy      string
		compact       bool
	)
	cmd := &cobra.Command{
		Use:   "query [document]",
		Short: "Execute a GraphQL document against the Star Wars example schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc string
			switch {
			case len(args) == 1 && file != "":
				return errors.New("pass either a document argument or --file, not both")
			case len(args) == 1:
				doc = args[0]
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				doc = string(b)
			default:
				return errors.New("missing GraphQL document")
			}

			vars := map[string]any{}
			if variables != "" {
				if err := json.Unmarshal([]byte(variables), &vars); err != nil {
					return fmt.Errorf("invalid --variables JSON: %w", err)
				}
			}
			st, err := parseStrategy(strategy)
			if err != nil {
				return err
			}
			sch, err := starwars.NewSchema(starwars.NewStore(), st)
			if err != nil {
				return err
			}

			res, err := engine.New(sch, engine.WithStrategy(st)).Execute(cmd.Context(), engine.Request{
				Query:         doc,
				OperationName: operationName,
				Variables:     vars,
			})
			if err != nil {
				return err
			}

			var out []byte
			if compact {
				out, err = json.Marshal(res.ToMap())
			} else {
				out, err = json.MarshalIndent(res.ToMap(), "", "  ")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if n := len(res.Errors); n > 0 {
				return fmt.Errorf("query completed with %d error(s)", n)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&file, "file", "f", "", "Read the document from a file")
	fs.StringVar(&variables, "variables", "", "Variables as a JSON object")
	fs.StringVar(&operationName, "operation", "", "Operation to execute")
	fs.StringVar(&strategy, "strategy", "serial", "Execution strategy: serial or parallel")
	fs.BoolVar(&compact, "compact", false, "Print JSON on a single line")
	return cmd
}
