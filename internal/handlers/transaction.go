package handlers

import (
	"time"

	"github.com/taqume/toycell-be/internal/repositories"
	"github.com/taqume/toycell-be/internal/services/ledger"
	"github.com/taqume/toycell-be/internal/utils/pagination"
	"github.com/taqume/toycell-be/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler serves ledger history and aggregate statistics.
type TransactionHandler struct {
	ledgerService ledger.Service
}

func NewTransactionHandler(ledgerService ledger.Service) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

func filterFromQuery(c *fiber.Ctx) repositories.EntryFilter {
	filter := repositories.EntryFilter{
		Type:     c.Query("type"),
		Currency: c.Query("currency"),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = t
		}
	}
	return filter
}

func (h *TransactionHandler) WalletHistory(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return response.BadRequest(c, "invalid wallet id")
	}

	p := pagination.ParseFromRequest(c)
	entries, total, err := h.ledgerService.WalletHistory(c.UserContext(), claims.UserID, uint(walletID), filterFromQuery(c), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total

	return c.JSON(pagination.Response(p, entries))
}

func (h *TransactionHandler) History(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	entries, total, err := h.ledgerService.OwnerHistory(c.UserContext(), claims.UserID, filterFromQuery(c), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total

	return c.JSON(pagination.Response(p, entries))
}

func (h *TransactionHandler) Statistics(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	stats, err := h.ledgerService.OwnerStatistics(c.UserContext(), claims.UserID, filterFromQuery(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "statistics", stats)
}

// EntriesByReference exposes the raw ledger legs behind one reference.
// Admin only, used for reconciliation.
func (h *TransactionHandler) EntriesByReference(c *fiber.Ctx) error {
	referenceID := c.Params("reference")
	if referenceID == "" {
		return response.BadRequest(c, "reference is required")
	}

	entries, err := h.ledgerService.EntriesByReference(c.UserContext(), referenceID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "ledger entries", fiber.Map{
		"entries": entries,
	})
}
