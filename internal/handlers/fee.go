package handlers

import (
	"github.com/taqume/toycell-be/internal/services/fee"
	"github.com/taqume/toycell-be/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type FeeHandler struct {
	feeService fee.Service
}

func NewFeeHandler(feeService fee.Service) *FeeHandler {
	return &FeeHandler{feeService: feeService}
}

// Quote returns the fee a transfer of the given amount would incur,
// without moving anything.
func (h *FeeHandler) Quote(c *fiber.Ctx) error {
	amountStr := c.Query("amount")
	currency := c.Query("currency")
	if amountStr == "" || currency == "" {
		return response.BadRequest(c, "amount and currency are required")
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return response.BadRequest(c, "invalid amount")
	}

	calc, err := h.feeService.CalculateFee(c.UserContext(), amount, currency)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "fee quote", calc)
}

func (h *FeeHandler) CreateRule(c *fiber.Ctx) error {
	var req fee.RuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	rule, err := h.feeService.CreateRule(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "fee rule created", rule)
}

func (h *FeeHandler) UpdateRule(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid rule id")
	}

	var req fee.RuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	rule, err := h.feeService.UpdateRule(c.UserContext(), uint(id), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "fee rule updated", rule)
}

func (h *FeeHandler) DeleteRule(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid rule id")
	}

	if err := h.feeService.DeleteRule(c.UserContext(), uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "fee rule deleted", nil)
}

func (h *FeeHandler) ListRules(c *fiber.Ctx) error {
	currency := c.Query("currency")
	activeOnly := c.QueryBool("active", false)

	rules, err := h.feeService.ListRules(c.UserContext(), currency, activeOnly)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "fee rules", fiber.Map{
		"rules": rules,
	})
}
