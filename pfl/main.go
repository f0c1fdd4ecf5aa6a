// Command pfl manages a multi-account investment portfolio.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/portfel/portfel/cmd"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion: this returns immediately unless invoked by the shell.
	completion().Complete("pfl")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	files := predict.Files("*")
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"portfolio-file": files,
		},
		Sub: map[string]*complete.Command{
			"add": {Flags: map[string]complete.Predictor{
				"s": predict.Nothing, "n": predict.Nothing, "a": predict.Nothing,
				"q": predict.Nothing, "c": predict.Nothing, "d": predict.Nothing,
				"t": predict.Set{"STOCK", "ETF", "BOND_ETF", "POLISH_GOV_BOND"},
			}},
			"cost": {Flags: map[string]complete.Predictor{
				"s": predict.Nothing, "a": predict.Nothing, "c": predict.Nothing, "d": predict.Nothing,
			}},
			"import":    {Flags: map[string]complete.Predictor{"b": predict.Nothing, "f": files}},
			"summary":   {Flags: map[string]complete.Predictor{"d": predict.Nothing}},
			"positions": {Flags: map[string]complete.Predictor{"sort": predict.Set{"value", "return", "pnl", "quantity"}, "d": predict.Nothing}},
			"position":  {Flags: map[string]complete.Predictor{"d": predict.Nothing}},
			"price":     {Flags: map[string]complete.Predictor{"f": files, "d": predict.Nothing}},
			"reconcile": {Flags: map[string]complete.Predictor{"f": files, "json": files, "tolerance": predict.Nothing}},
			"fmt":       {},
		},
	}
}
