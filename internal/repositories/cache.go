package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"earnedpay/internal/config"
	"earnedpay/internal/models"

	"github.com/redis/go-redis/v9"
)

const ledgerCachePrefix = "ledger"

// LedgerCache is the cache contract consumed by the services. Reads are
// best-effort; a miss or cache failure always falls through to the store.
type LedgerCache interface {
	GetLedger(ctx context.Context, workerID, month string) (*models.WageLedger, error)
	SetLedger(ctx context.Context, ledger *models.WageLedger) error
	DeleteLedger(ctx context.Context, workerID, month string) error
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisConfig creates a RedisConfig from the environment.
func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:         config.GetEnv("REDIS_HOST", "localhost"),
		Port:         config.GetEnv("REDIS_PORT", "6379"),
		Password:     config.GetEnv("REDIS_PASSWORD", ""),
		DB:           config.GetIntEnv("REDIS_DB", 0),
		PoolSize:     config.GetIntEnv("REDIS_POOL_SIZE", 10),
		MinIdleConns: config.GetIntEnv("REDIS_MIN_IDLE_CONNS", 5),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewRedisClient connects to Redis with the given configuration.
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis unavailable, ledger cache disabled: %v", err)
	}

	return client
}

// LedgerCacheService caches active wage ledgers keyed by worker and
// month. Mutating writers invalidate; the store stays authoritative.
type LedgerCacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLedgerCacheService(client *redis.Client, ttl time.Duration) *LedgerCacheService {
	return &LedgerCacheService{client: client, ttl: ttl}
}

func ledgerKey(workerID, month string) string {
	return fmt.Sprintf("%s:%s:%s", ledgerCachePrefix, workerID, month)
}

func (s *LedgerCacheService) GetLedger(ctx context.Context, workerID, month string) (*models.WageLedger, error) {
	val, err := s.client.Get(ctx, ledgerKey(workerID, month)).Result()
	if err != nil {
		return nil, err
	}

	var ledger models.WageLedger
	if err := json.Unmarshal([]byte(val), &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (s *LedgerCacheService) SetLedger(ctx context.Context, ledger *models.WageLedger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, ledgerKey(ledger.WorkerID, ledger.Month), data, s.ttl).Err()
}

func (s *LedgerCacheService) DeleteLedger(ctx context.Context, workerID, month string) error {
	return s.client.Del(ctx, ledgerKey(workerID, month)).Err()
}

// FlushAll clears the cache, used on startup so stale ledgers from a
// previous run never shadow the store.
func (s *LedgerCacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close releases the underlying Redis connection.
func (s *LedgerCacheService) Close() error {
	return s.client.Close()
}
