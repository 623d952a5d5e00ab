package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blockbet-backend/internal/models"
	"blockbet-backend/internal/services"
)

type AccountHandler struct {
	accounts    *services.AccountService
	withdrawals *services.WithdrawalService
	giftcodes   *services.GiftCodeService
}

func NewAccountHandler(accounts *services.AccountService, withdrawals *services.WithdrawalService, giftcodes *services.GiftCodeService) *AccountHandler {
	return &AccountHandler{
		accounts:    accounts,
		withdrawals: withdrawals,
		giftcodes:   giftcodes,
	}
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	acc, err := h.accounts.Profile(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load account",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"account": gin.H{
			"id":                acc.ID,
			"balance":           acc.Balance,
			"vip_tier":          acc.VIPTier,
			"total_wagered":     acc.TotalWagered,
			"total_deposited":   acc.TotalDeposited,
			"total_withdrawn":   acc.TotalWithdrawn,
			"pending_bet":       acc.PendingBet,
			"wager_requirement": acc.WagerRequirement,
			"bank_info":         acc.BankInfo,
			"banned":            acc.Banned(time.Now()),
			"created_at":        acc.CreatedAt,
		},
	})
}

func (h *AccountHandler) LinkBank(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	var req models.BankInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	acc, err := h.accounts.LinkBank(c.Request.Context(), accountID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"bank_info": acc.BankInfo,
	})
}

func (h *AccountHandler) ClaimDailyBonus(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	acc, err := h.accounts.DailyBonus(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bonus":   services.DailyBonusAmount,
		"balance": acc.Balance,
	})
}

func (h *AccountHandler) RedeemGiftCode(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.giftcodes.Redeem(c.Request.Context(), accountID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *AccountHandler) CreateWithdrawal(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	var req struct {
		Amount int64            `json:"amount" binding:"required"`
		Bank   *models.BankInfo `json:"bank"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	w, err := h.withdrawals.Create(c.Request.Context(), accountID, req.Amount, req.Bank)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"withdrawal": gin.H{
			"id":         w.ID,
			"amount":     w.Amount,
			"status":     w.Status,
			"created_at": w.CreatedAt,
		},
	})
}
