package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grounded-qa/config"
	"grounded-qa/internal/api"
	"grounded-qa/internal/core/completion"
	"grounded-qa/internal/core/prompt"
	"grounded-qa/internal/core/query"
	"grounded-qa/internal/core/retriever"
	"grounded-qa/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
)

// Variant describes one demo binary. Only the completion backend differs.
type Variant struct {
	Use          string
	Short        string
	NewCompleter func(cfg *config.Config) completion.Completer
}

// NewRootCommand returns the command that loads config, builds the clients
// once and serves the form until interrupted.
func NewRootCommand(v Variant) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          v.Use,
		Short:        v.Short,
		SilenceUsage: true, // don't print usage on operational errors
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cfg, err := build(configPath, v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	return cmd
}

// Execute is called by main.go.
func Execute(v Variant) {
	if err := NewRootCommand(v).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func build(configPath string, v Variant) (*fiber.App, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.LogLevel)

	search, err := retriever.NewClient(cfg.Search)
	if err != nil {
		return nil, nil, err
	}
	assembler := prompt.NewAssembler(cfg.Search.SourceFields)
	svc := query.NewService(search, assembler, v.NewCompleter(cfg))
	return api.NewApp(cfg, api.Deps{
		Runner:    svc,
		Searcher:  search,
		Pinger:    search,
		Assembler: assembler,
	}), cfg, nil
}

func serve(ctx context.Context, app *fiber.App, cfg *config.Config) error {
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("%v: listening on %s (index %s)", config.ModuleServer, addr, cfg.Search.Index)
		errCh <- app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("%v: shutting down", config.ModuleServer)
		return app.Shutdown()
	}
}
