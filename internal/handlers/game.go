package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blockbet-backend/internal/models"
	"blockbet-backend/internal/services"
)

type GameHandler struct {
	games    *services.GameService
	accounts *services.AccountService
}

func NewGameHandler(games *services.GameService, accounts *services.AccountService) *GameHandler {
	return &GameHandler{
		games:    games,
		accounts: accounts,
	}
}

func (h *GameHandler) AddStake(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	var req struct {
		Amount int64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	acc, err := h.games.AddStake(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"pending_bet": acc.PendingBet,
		"balance":     acc.Balance,
	})
}

func (h *GameHandler) StakeAll(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	acc, err := h.games.StakeAll(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"pending_bet": acc.PendingBet,
		"balance":     acc.Balance,
	})
}

func (h *GameHandler) ResetStake(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	acc, err := h.games.ResetStake(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"pending_bet": acc.PendingBet,
		"balance":     acc.Balance,
	})
}

func (h *GameHandler) PlaceBet(c *gin.Context) {
	accountID := c.GetInt64("account_id")

	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.games.Settle(c.Request.Context(), accountID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": gin.H{
			"game":         result.GameKind,
			"selection":    result.Selection,
			"block_number": result.BlockNumber,
			"block_hash":   result.BlockHash,
			"result":       result.Result,
			"outcome":      result.OutcomeKey,
			"won":          result.Won,
			"stake":        result.Stake,
			"delta":        result.Delta,
			"new_balance":  result.NewBalance,
			"vip_message":  result.VIPMessage,
		},
	})
}

func (h *GameHandler) GetBalance(c *gin.Context) {
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
		"success":           true,
		"balance":           acc.Balance,
		"pending_bet":       acc.PendingBet,
		"wager_requirement": acc.WagerRequirement,
		"vip_tier":          acc.VIPTier,
	})
}

func (h *GameHandler) GetHistory(c *gin.Context) {
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
		"success":     true,
		"bets":        acc.BetHistory,
		"deposits":    acc.DepositHistory,
		"withdrawals": acc.WithdrawalHistory,
	})
}
