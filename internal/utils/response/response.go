package response

import (
	"errors"

	domainerr "github.com/taqume/toycell-be/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, "VALIDATION_ERROR", message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// FromError maps a domain error to its HTTP status and serializes the
// code and message. Unknown errors become an opaque 500.
func FromError(c *fiber.Ctx, err error) error {
	var de *domainerr.DomainError
	if !errors.As(err, &de) {
		return ServerError(c, "something went wrong")
	}
	return Error(c, statusFor(de), de.Code, de.Message)
}

func statusFor(de *domainerr.DomainError) int {
	switch de.Code {
	case domainerr.ErrWalletNotFound.Code,
		domainerr.ErrTransferNotFound.Code,
		domainerr.ErrUserNotFound.Code,
		domainerr.ErrFeeRuleNotFound.Code:
		return fiber.StatusNotFound
	case domainerr.ErrUnauthorized.Code,
		domainerr.ErrInvalidCredentials.Code,
		domainerr.ErrCaptchaRequired.Code,
		domainerr.ErrCaptchaFailed.Code:
		return fiber.StatusUnauthorized
	case domainerr.ErrWalletAlreadyExists.Code,
		domainerr.ErrUserAlreadyExists.Code,
		domainerr.ErrDuplicateTransfer.Code:
		return fiber.StatusConflict
	case domainerr.ErrInsufficientBalance.Code,
		domainerr.ErrWalletInactive.Code,
		domainerr.ErrTransferCompensated.Code:
		return fiber.StatusUnprocessableEntity
	case domainerr.ErrTransferInconsistent.Code:
		return fiber.StatusConflict
	case domainerr.ErrValidation.Code,
		domainerr.ErrInvalidAmount.Code,
		domainerr.ErrCurrencyMismatch.Code,
		domainerr.ErrSameWalletTransfer.Code:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
