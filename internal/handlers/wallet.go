package handlers

import (
	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/services/ledger"
	"github.com/taqume/toycell-be/internal/utils/response"
	"github.com/taqume/toycell-be/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	ledgerService ledger.Service
}

func NewWalletHandler(ledgerService ledger.Service) *WalletHandler {
	return &WalletHandler{ledgerService: ledgerService}
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req struct {
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if !validation.IsSupportedCurrency(req.Currency) {
		return response.BadRequest(c, "unsupported currency")
	}

	wallet, err := h.ledgerService.CreateWallet(c.UserContext(), claims.UserID, req.Currency)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "wallet created", fiber.Map{
		"wallet": wallet,
	})
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return response.BadRequest(c, "invalid wallet id")
	}

	wallet, err := h.ledgerService.GetWallet(c.UserContext(), uint(walletID))
	if err != nil {
		return response.FromError(c, err)
	}
	if wallet.OwnerID != claims.UserID && !claims.IsAdmin() {
		return response.FromError(c, domainerr.ErrUnauthorized)
	}

	return response.Success(c, "wallet", fiber.Map{
		"wallet": wallet,
	})
}

func (h *WalletHandler) ListWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	wallets, err := h.ledgerService.GetOwnerWallets(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "wallets", fiber.Map{
		"wallets": wallets,
	})
}

type balanceOperationRequest struct {
	WalletID    uint            `json:"wallet_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req balanceOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if req.WalletID == 0 {
		return response.BadRequest(c, "wallet_id is required")
	}

	result, err := h.ledgerService.Deposit(c.UserContext(), claims.UserID, req.WalletID, req.Amount, req.Description)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "deposit successful", fiber.Map{
		"wallet_id":     result.WalletID,
		"entry_id":      result.EntryID,
		"balance_after": result.BalanceAfter,
	})
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req balanceOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if req.WalletID == 0 {
		return response.BadRequest(c, "wallet_id is required")
	}

	result, err := h.ledgerService.Withdraw(c.UserContext(), claims.UserID, req.WalletID, req.Amount, req.Description)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "withdrawal successful", fiber.Map{
		"wallet_id":     result.WalletID,
		"entry_id":      result.EntryID,
		"balance_after": result.BalanceAfter,
	})
}

// SetWalletActive freezes or unfreezes a wallet. Admin only.
func (h *WalletHandler) SetWalletActive(c *fiber.Ctx) error {
	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return response.BadRequest(c, "invalid wallet id")
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return response.BadRequest(c, "active is required")
	}

	if err := h.ledgerService.SetWalletActive(c.UserContext(), uint(walletID), *req.Active); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "wallet updated", nil)
}
