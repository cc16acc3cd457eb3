package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"grounded-qa/pkg/apperror/status"
	"grounded-qa/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

// Recover turns a panic into an error so ErrorHandler answers it like any
// other pipeline failure. The stack is logged here since it is lost after.
func Recover() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.WithFields(map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"ip":     c.IP(),
				"stack":  string(debug.Stack()),
			}).Errorf("panic in handler: %v", r)
			err = fmt.Errorf("panic: %v", r)
		}()
		return c.Next()
	}
}

// RequestLogger logs one line per request once the handler chain is done.
func RequestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		fields := map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		}
		// On error the status is set later by ErrorHandler.
		if err != nil {
			fields["error"] = err.Error()
		} else {
			fields["status"] = c.Response().StatusCode()
		}
		logger.WithFields(fields).Info("http request")
		return err
	}
}

// ErrorHandler answers errors returned by handlers. Pipeline failures get a
// generic 500; the detail only goes to the log.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	logger.WithFields(map[string]interface{}{
		"status_code": code,
		"error_code":  status.CodeOf(err),
		"error":       err.Error(),
		"method":      c.Method(),
		"path":        c.Path(),
	}).Errorf("request failed")

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(message)
}
