package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"blockbet-backend/internal/services"
)

// respondError translates service sentinels into HTTP statuses. Anything
// unrecognized is treated as an internal fault.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrNoStake),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrWagerRequired),
		errors.Is(err, services.ErrNoBankLinked),
		errors.Is(err, services.ErrInvalidBankInfo),
		errors.Is(err, services.ErrBonusClaimed),
		errors.Is(err, services.ErrInvalidWinRate),
		errors.Is(err, services.ErrWithdrawalNotPending),
		errors.Is(err, services.ErrCodeAlreadyUsed),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrCodeExhausted),
		errors.Is(err, services.ErrCodeExists):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrAccountBanned):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrWithdrawalNotFound),
		errors.Is(err, services.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrMaintenance):
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
