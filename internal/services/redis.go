package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blockbet-backend/internal/config"
	"blockbet-backend/internal/models"
)

// RedisService is the durable record store behind every store interface:
// whole records are JSON-marshaled under formatted keys, with small index
// sets for listing.
type RedisService struct {
	client *redis.Client
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// --- AccountStore ---

func (s *RedisService) GetOrCreateAccount(ctx context.Context, id int64) (*models.Account, error) {
	key := fmt.Sprintf(KeyAccount, id)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		acc := models.NewAccount(id)
		if err := s.SaveAccount(ctx, acc); err != nil {
			return nil, fmt.Errorf("failed to create account: %v", err)
		}
		return acc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %v", err)
	}

	var acc models.Account
	if err := json.Unmarshal([]byte(data), &acc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %v", err)
	}
	return &acc, nil
}

func (s *RedisService) SaveAccount(ctx context.Context, acc *models.Account) error {
	acc.UpdatedAt = time.Now().Unix()

	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %v", err)
	}

	key := fmt.Sprintf(KeyAccount, acc.ID)
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return err
	}
	return s.client.SAdd(ctx, KeyAccountIndex, acc.ID).Err()
}

func (s *RedisService) ListAccountIDs(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, KeyAccountIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %v", err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		var id int64
		if _, err := fmt.Sscanf(m, "%d", &id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DeleteAccount removes the record and its index entry. Accounts are never
// deleted in normal operation; this exists for test cleanup.
func (s *RedisService) DeleteAccount(ctx context.Context, id int64) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf(KeyAccount, id))
	pipe.SRem(ctx, KeyAccountIndex, id)
	_, err := pipe.Exec(ctx)
	return err
}

// --- WithdrawalStore ---

func (s *RedisService) SaveWithdrawal(ctx context.Context, w *models.WithdrawalRequest) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal withdrawal: %v", err)
	}

	key := fmt.Sprintf(KeyWithdrawal, w.ID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	for _, status := range []string{
		models.WithdrawalStatusPending,
		models.WithdrawalStatusApproved,
		models.WithdrawalStatusRejected,
	} {
		idx := fmt.Sprintf(KeyWithdrawalIndex, status)
		if status == w.Status {
			pipe.SAdd(ctx, idx, w.ID)
		} else {
			pipe.SRem(ctx, idx, w.ID)
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisService) DeleteWithdrawal(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf(KeyWithdrawal, id))
	for _, status := range []string{
		models.WithdrawalStatusPending,
		models.WithdrawalStatusApproved,
		models.WithdrawalStatusRejected,
	} {
		pipe.SRem(ctx, fmt.Sprintf(KeyWithdrawalIndex, status), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisService) GetWithdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyWithdrawal, id)).Result()
	if err == redis.Nil {
		return nil, ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal: %v", err)
	}

	var w models.WithdrawalRequest
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal withdrawal: %v", err)
	}
	return &w, nil
}

func (s *RedisService) ListWithdrawals(ctx context.Context, status string) ([]*models.WithdrawalRequest, error) {
	ids, err := s.client.SMembers(ctx, fmt.Sprintf(KeyWithdrawalIndex, status)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %v", err)
	}
	if len(ids) == 0 {
		return []*models.WithdrawalRequest{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, fmt.Sprintf(KeyWithdrawal, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipeline execution failed: %v", err)
	}

	var out []*models.WithdrawalRequest
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		var w models.WithdrawalRequest
		if err := json.Unmarshal([]byte(data), &w); err != nil {
			continue
		}
		out = append(out, &w)
	}
	return out, nil
}

// --- GiftCodeStore ---

func (s *RedisService) GetGiftCode(ctx context.Context, code string) (*models.GiftCode, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyGiftCode, code)).Result()
	if err == redis.Nil {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift code: %v", err)
	}

	var gc models.GiftCode
	if err := json.Unmarshal([]byte(data), &gc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gift code: %v", err)
	}
	return &gc, nil
}

func (s *RedisService) SaveGiftCode(ctx context.Context, gc *models.GiftCode) error {
	data, err := json.Marshal(gc)
	if err != nil {
		return fmt.Errorf("failed to marshal gift code: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyGiftCode, gc.Code), data, 0)
	pipe.SAdd(ctx, KeyGiftCodeIndex, gc.Code)
	_, err = pipe.Exec(ctx)
	return err
}

// giftCodeUsageScript rewrites the used counter inside the stored record in
// one round trip, so concurrent redeemers cannot lose each other's bump.
var giftCodeUsageScript = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return -1
end
local gc = cjson.decode(data)
gc.used = (gc.used or 0) + tonumber(ARGV[1])
redis.call('SET', KEYS[1], cjson.encode(gc))
return gc.used
`)

func (s *RedisService) IncrementGiftCodeUsage(ctx context.Context, code string, delta int) (int, error) {
	key := fmt.Sprintf(KeyGiftCode, code)
	used, err := giftCodeUsageScript.Run(ctx, s.client, []string{key}, delta).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to bump gift code usage: %v", err)
	}
	if used == -1 {
		return 0, ErrCodeNotFound
	}
	return used, nil
}

func (s *RedisService) DeleteGiftCode(ctx context.Context, code string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf(KeyGiftCode, code))
	pipe.SRem(ctx, KeyGiftCodeIndex, code)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisService) ListGiftCodes(ctx context.Context) ([]*models.GiftCode, error) {
	codes, err := s.client.SMembers(ctx, KeyGiftCodeIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list gift codes: %v", err)
	}

	var out []*models.GiftCode
	for _, code := range codes {
		gc, err := s.GetGiftCode(ctx, code)
		if err != nil {
			continue
		}
		out = append(out, gc)
	}
	return out, nil
}

// --- SettingsStore ---

func (s *RedisService) GetSetting(ctx context.Context, key string) (string, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeySetting, key)).Result()
	if err == redis.Nil {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %v", err)
	}
	return data, nil
}

func (s *RedisService) SetSetting(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting: %v", err)
	}
	return s.client.Set(ctx, fmt.Sprintf(KeySetting, key), data, 0).Err()
}

// --- Transactions (bookkeeping for the admin query surface) ---

func (s *RedisService) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %v", err)
	}

	txKey := fmt.Sprintf(KeyTransaction, tx.ID)
	if err := s.client.Set(ctx, txKey, data, TTLTransaction).Err(); err != nil {
		return fmt.Errorf("failed to save transaction: %v", err)
	}

	idxKey := fmt.Sprintf(KeyAccountTransactions, tx.AccountID)
	if err := s.client.ZAdd(ctx, idxKey, redis.Z{
		Score:  float64(tx.CreatedAt.Unix()),
		Member: tx.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index transaction: %v", err)
	}

	s.client.ZRemRangeByRank(ctx, idxKey, 0, int64(-transactionIndexCap-1))
	return nil
}

func (s *RedisService) GetAccountTransactions(ctx context.Context, accountID int64, limit int64) ([]*models.Transaction, error) {
	if limit <= 0 || limit > transactionIndexCap {
		limit = 50
	}

	idxKey := fmt.Sprintf(KeyAccountTransactions, accountID)
	ids, err := s.client.ZRevRange(ctx, idxKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction ids: %v", err)
	}

	var out []*models.Transaction
	for _, id := range ids {
		data, err := s.client.Get(ctx, fmt.Sprintf(KeyTransaction, id)).Result()
		if err != nil {
			continue
		}
		var tx models.Transaction
		if err := json.Unmarshal([]byte(data), &tx); err != nil {
			continue
		}
		out = append(out, &tx)
	}
	return out, nil
}

// --- Rate limiting ---

func (s *RedisService) CheckRateLimit(ctx context.Context, accountID int64, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, accountID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}
	if count == 1 {
		s.client.Expire(ctx, key, window)
	}
	return count <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(ctx context.Context, accountID int64, action string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyRateLimit, accountID, action)).Err()
}
