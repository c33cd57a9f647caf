package handlers

import (
	"github.com/taqume/toycell-be/internal/services/transfer"
	"github.com/taqume/toycell-be/internal/utils/pagination"
	"github.com/taqume/toycell-be/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type TransferHandler struct {
	transferService transfer.Service
}

func NewTransferHandler(transferService transfer.Service) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

type transferRequest struct {
	SenderWalletID   uint            `json:"sender_wallet_id"`
	ReceiverWalletID uint            `json:"receiver_wallet_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Description      string          `json:"description"`
}

func (h *TransferHandler) CreateTransfer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if req.SenderWalletID == 0 || req.ReceiverWalletID == 0 {
		return response.BadRequest(c, "sender_wallet_id and receiver_wallet_id are required")
	}

	result, err := h.transferService.Transfer(c.UserContext(), transfer.Request{
		SenderWalletID:   req.SenderWalletID,
		ReceiverWalletID: req.ReceiverWalletID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		CallerOwnerID:    claims.UserID,
		Description:      req.Description,
		IdempotencyKey:   c.Get("Idempotency-Key"),
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "transfer completed", result)
}

func (h *TransferHandler) GetTransfer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	referenceID := c.Params("reference")
	if referenceID == "" {
		return response.BadRequest(c, "reference is required")
	}

	t, err := h.transferService.GetTransfer(c.UserContext(), referenceID)
	if err != nil {
		return response.FromError(c, err)
	}
	if t.SenderOwnerID != claims.UserID && t.ReceiverOwnerID != claims.UserID && !claims.IsAdmin() {
		return response.Unauthorized(c)
	}

	return response.Success(c, "transfer", fiber.Map{
		"transfer": t,
	})
}

func (h *TransferHandler) ListTransfers(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	transfers, total, err := h.transferService.ListTransfers(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total

	return c.JSON(pagination.Response(p, transfers))
}
