package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"blockbet-backend/internal/models"
	"blockbet-backend/internal/services"
)

type AdminHandler struct {
	admin        *services.AdminService
	withdrawals  *services.WithdrawalService
	giftcodes    *services.GiftCodeService
	redisService *services.RedisService
}

func NewAdminHandler(admin *services.AdminService, withdrawals *services.WithdrawalService, giftcodes *services.GiftCodeService, redisService *services.RedisService) *AdminHandler {
	return &AdminHandler{
		admin:        admin,
		withdrawals:  withdrawals,
		giftcodes:    giftcodes,
		redisService: redisService,
	}
}

func (h *AdminHandler) targetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
		return 0, false
	}
	return id, true
}

func (h *AdminHandler) Deposit(c *gin.Context) {
	adminID := c.GetInt64("account_id")
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

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

	acc, err := h.admin.Deposit(c.Request.Context(), adminID, targetID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": acc.Balance,
	})
}

func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	adminID := c.GetInt64("account_id")
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

	var req struct {
		Delta int64 `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	acc, err := h.admin.AdjustBalance(c.Request.Context(), adminID, targetID, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": acc.Balance,
	})
}

func (h *AdminHandler) Ban(c *gin.Context) {
	adminID := c.GetInt64("account_id")
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

	var req struct {
		Hours  int    `json:"hours" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Hours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	until := time.Now().Add(time.Duration(req.Hours) * time.Hour)
	acc, err := h.admin.Ban(c.Request.Context(), adminID, targetID, until, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"banned_until": acc.BannedUntil,
	})
}

func (h *AdminHandler) Unban(c *gin.Context) {
	adminID := c.GetInt64("account_id")
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

	if _, err := h.admin.Unban(c.Request.Context(), adminID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) SetWinRate(c *gin.Context) {
	adminID := c.GetInt64("account_id")
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

	var req struct {
		Rate *int `json:"rate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	acc, err := h.admin.SetWinRate(c.Request.Context(), adminID, targetID, *req.Rate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"win_rate": acc.WinRateOverride,
	})
}

func (h *AdminHandler) EditProfile(c *gin.Context) {
	adminID := c.GetInt64("account_id")
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

	var req services.ProfileEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	acc, err := h.admin.EditProfile(c.Request.Context(), adminID, targetID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"account": gin.H{
			"id":                acc.ID,
			"vip_tier":          acc.VIPTier,
			"win_rate":          acc.WinRateOverride,
			"wager_requirement": acc.WagerRequirement,
		},
	})
}

func (h *AdminHandler) ResetWagered(c *gin.Context) {
	adminID := c.GetInt64("account_id")
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

	if _, err := h.admin.ResetWagered(c.Request.Context(), adminID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) GetAccount(c *gin.Context) {
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

	acc, err := h.redisService.GetOrCreateAccount(c.Request.Context(), targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load account",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"account": acc,
	})
}

func (h *AdminHandler) GetTransactions(c *gin.Context) {
	targetID, ok := h.targetID(c)
	if !ok {
		return
	}

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 50
	}

	txs, err := h.redisService.GetAccountTransactions(c.Request.Context(), targetID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load transactions",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": txs,
		"count":        len(txs),
	})
}

func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	status := c.DefaultQuery("status", models.WithdrawalStatusPending)

	ws, err := h.withdrawals.List(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list withdrawals",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"withdrawals": ws,
		"count":       len(ws),
	})
}

func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	w, err := h.withdrawals.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"withdrawal": w,
	})
}

func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	w, err := h.withdrawals.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"withdrawal": w,
	})
}

func (h *AdminHandler) CreateGiftCode(c *gin.Context) {
	var req struct {
		Code            string `json:"code" binding:"required"`
		Amount          int64  `json:"amount" binding:"required"`
		Quantity        int    `json:"quantity"`
		WagerMultiplier int    `json:"wager_multiplier"`
		TTLMinutes      int    `json:"ttl_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	gc, err := h.giftcodes.Create(c.Request.Context(), req.Code, req.Amount,
		req.Quantity, req.WagerMultiplier, time.Duration(req.TTLMinutes)*time.Minute)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"gift_code": gc,
	})
}

func (h *AdminHandler) DeleteGiftCode(c *gin.Context) {
	if err := h.giftcodes.Delete(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListGiftCodes(c *gin.Context) {
	codes, err := h.giftcodes.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list gift codes",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"gift_codes": codes,
		"count":      len(codes),
	})
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute stats",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

func (h *AdminHandler) GetTopBalances(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	top, err := h.admin.TopBalances(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list accounts",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"accounts": top,
	})
}

func (h *AdminHandler) SetGlobalWinRate(c *gin.Context) {
	adminID := c.GetInt64("account_id")

	var req struct {
		Rate *int `json:"rate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.admin.SetGlobalWinRate(c.Request.Context(), adminID, *req.Rate); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) SetPayoutRate(c *gin.Context) {
	adminID := c.GetInt64("account_id")

	var req struct {
		Rate float64         `json:"rate" binding:"required"`
		Game models.GameKind `json:"game"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.admin.SetPayoutRate(c.Request.Context(), adminID, req.Game, req.Rate); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) SetMaintenanceMode(c *gin.Context) {
	adminID := c.GetInt64("account_id")

	var req struct {
		On *bool `json:"on" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.admin.SetMaintenanceMode(c.Request.Context(), adminID, *req.On); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
