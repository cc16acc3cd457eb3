package healthcheck

import (
	"context"
	"time"

	"grounded-qa/config"
	"grounded-qa/pkg/apperror"

	"github.com/gofiber/fiber/v3"
)

// Pinger is satisfied by *retriever.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	search Pinger
}

func NewHandler(search Pinger) *Handler {
	return &Handler{search: search}
}

func (h *Handler) API(c fiber.Ctx) error {
	return c.SendString("ok")
}

func (h *Handler) Search(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if err := h.search.Ping(ctx); err != nil {
		return apperror.InternalError(config.ModuleHealth, c, err)
	}
	return c.SendString("ok")
}
