package ask

import (
	"context"
	"encoding/json"
	"strings"

	"grounded-qa/config"
	"grounded-qa/internal/core/query"
	"grounded-qa/pkg/apperror"
	"grounded-qa/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

const questionField = "question"

// Runner is satisfied by *query.Service.
type Runner interface {
	Run(ctx context.Context, question string) (query.Response, error)
}

type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// Index renders the empty form.
func (h *Handler) Index(c fiber.Ctx) error {
	return c.Render("index", fiber.Map{"question": nil, "response": nil})
}

// Ask handles a form submission. Pipeline errors are returned as-is so the
// app error handler answers with a generic 500.
func (h *Handler) Ask(c fiber.Ctx) error {
	question, ok := formValue(c, questionField)
	if !ok {
		return apperror.BadRequest(config.ModuleAsk, c, status.AskMissingQuestion, "question is required")
	}

	resp, err := h.runner.Run(c.Context(), question)
	if err != nil {
		return err
	}
	return c.Render("index", fiber.Map{"question": resp.Question, "response": resp.Answer})
}

// AskJSON is the JSON flavour of Ask: {"question": "..."} in, the answer
// wrapped in the standard success envelope out.
func (h *Handler) AskJSON(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req query.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleAsk, c, status.AskInvalidBody, err.Error())
	}
	if strings.TrimSpace(req.Question) == "" {
		return apperror.BadRequest(config.ModuleAsk, c, status.AskMissingQuestion, "question is empty")
	}

	resp, err := h.runner.Run(c.Context(), req.Question)
	if err != nil {
		return apperror.InternalError(config.ModuleAsk, c, err)
	}

	return apperror.Success(config.ModuleAsk, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "ask ok",
		TrackingID: trackingID,
		Data:       resp,
	})
}

// formValue reads a field from an urlencoded or multipart body and reports
// whether it was present at all. An empty value still counts as present.
func formValue(c fiber.Ctx, key string) (string, bool) {
	if args := c.Request().PostArgs(); args.Has(key) {
		return string(args.Peek(key)), true
	}
	if form, err := c.MultipartForm(); err == nil {
		if values, ok := form.Value[key]; ok && len(values) > 0 {
			return values[0], true
		}
	}
	return "", false
}
