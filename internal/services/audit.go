package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
)

// AuditLog appends plain-text lines to per-concern log files. Writes are best
// effort: a failed append is logged and swallowed, it never fails the caller.
type AuditLog struct {
	dir string
	log zerolog.Logger
	mu  sync.Mutex
}

func NewAuditLog(dir string, log zerolog.Logger) *AuditLog {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("failed to create audit log dir")
	}
	return &AuditLog{dir: dir, log: log.With().Str("component", "audit").Logger()}
}

func (a *AuditLog) append(file, line string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(a.dir, file), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		a.log.Warn().Err(err).Str("file", file).Msg("audit append failed")
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	if _, err := fmt.Fprintf(f, "[%s] %s\n", timestamp, line); err != nil {
		a.log.Warn().Err(err).Str("file", file).Msg("audit write failed")
	}
}

func (a *AuditLog) LogGame(accountID int64, kind models.GameKind, stake int64, selection, outcome string, winAmount, balanceAfter int64) {
	a.append("game_logs.txt", fmt.Sprintf(
		"Account: %d | Game: %s | Pick: %s | Stake: %s | Result: %s | Win: %s | Bal: %s",
		accountID, kind, selection, models.FormatAmount(stake), outcome,
		models.FormatAmount(winAmount), models.FormatAmount(balanceAfter)))
}

func (a *AuditLog) LogTransaction(accountID int64, txType models.TransactionType, amount int64, method, status string) {
	a.append("transaction_logs.txt", fmt.Sprintf(
		"Account: %d | Type: %s | Amount: %s | Method: %s | Status: %s",
		accountID, txType, models.FormatAmount(amount), method, status))
}

func (a *AuditLog) LogAdminAction(adminID int64, action string, targetID int64, details string) {
	a.append("admin_logs.txt", fmt.Sprintf(
		"Admin: %d | Action: %s | Target: %d | Details: %s",
		adminID, action, targetID, details))
}
