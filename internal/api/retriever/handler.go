package retriever

import (
	"strings"

	"grounded-qa/config"
	"grounded-qa/internal/core/prompt"
	"grounded-qa/internal/core/query"
	coreretriever "grounded-qa/internal/core/retriever"
	"grounded-qa/pkg/apperror"
	"grounded-qa/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type searchResponse struct {
	Hits    []coreretriever.Hit `json:"hits"`
	Context string              `json:"context"`
}

type Handler struct {
	searcher  query.Searcher
	assembler *prompt.Assembler
}

func NewHandler(searcher query.Searcher, assembler *prompt.Assembler) *Handler {
	return &Handler{searcher: searcher, assembler: assembler}
}

// HandleSearch runs only the retrieval half of the pipeline and returns the
// hits with the context the model would see.
func (h *Handler) HandleSearch(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return apperror.BadRequest(config.ModuleSearch, c, status.AskMissingQuestion, "q is required")
	}

	hits, err := h.searcher.Search(c.Context(), q)
	if err != nil {
		return apperror.InternalError(config.ModuleSearch, c, err)
	}
	ctx, err := h.assembler.BuildContext(hits)
	if err != nil {
		return apperror.InternalError(config.ModuleSearch, c, err)
	}

	return apperror.Success(config.ModuleSearch, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "search ok",
		TrackingID: trackingID,
		Data:       searchResponse{Hits: hits, Context: ctx},
	})
}
