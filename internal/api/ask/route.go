package ask

import "github.com/gofiber/fiber/v3"

func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Get("/", h.Index)
	r.Post("/", h.Ask)
	r.Post("/api/ask", h.AskJSON)
}
