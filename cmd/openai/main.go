package main

import (
	"grounded-qa/config"
	"grounded-qa/internal/cli"
	"grounded-qa/internal/core/completion"
)

func main() {
	cli.Execute(cli.Variant{
		Use:   "ask-openai",
		Short: "Answer questions from the rules index with the OpenAI API",
		NewCompleter: func(cfg *config.Config) completion.Completer {
			return completion.NewHosted(cfg.OpenAI)
		},
	})
}
