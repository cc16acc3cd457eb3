package main

import (
	"grounded-qa/config"
	"grounded-qa/internal/cli"
	"grounded-qa/internal/core/completion"
)

func main() {
	cli.Execute(cli.Variant{
		Use:   "ask-local",
		Short: "Answer questions from the rules index with a locally hosted model",
		NewCompleter: func(cfg *config.Config) completion.Completer {
			return completion.NewLocal(cfg.LocalLLM)
		},
	})
}
