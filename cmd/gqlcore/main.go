package main

import (
	"fmt"
	"os"

	schema "github.com/hanpama/gqlcore/internal/schema"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gqlcore",
		Short:        "GraphQL execution engine and example server",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newFleetCmd(), newQueryCmd(), newSDLCmd())
	return root
}

func parseStrategy(s string) (schema.Strategy, error) {
	switch s {
	case "", "serial":
		return schema.StrategySerial, nil
	case "parallel":
		return schema.StrategyParallel, nil
	default:
		return 0, fmt.Errorf("unknown execution strategy %q (want serial or parallel)", s)
	}
}
