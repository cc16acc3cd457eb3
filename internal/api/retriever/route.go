package retriever

import "github.com/gofiber/fiber/v3"

func RegisterRoutes(r fiber.Router, h *Handler) {
	grp := r.Group("/retriever")

	grp.Get("/search", h.HandleSearch)
}
