// README: Correlation map backed by Redis; links outbound messages to order context.
package correlate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wajba/internal/types"
)

const (
	msgKeyPrefix = "correlate:msg:%s"
	// Entries expire instead of accumulating for the process lifetime; 48h
	// outlives any plausible remaining-time exchange.
	entryTTL = 48 * time.Hour
)

var ErrNotFound = errors.New("correlation not found")

// Entry ties an outbound operator-channel message back to the customer and
// order it concerns.
type Entry struct {
	CustomerID   types.ID  `json:"customer_id"`
	OrderID      types.ID  `json:"order_id"`
	RestaurantID types.ID  `json:"restaurant_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) Remember(ctx context.Context, messageRef string, e Entry) error {
	val, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, msgKey(messageRef), val, entryTTL).Err()
}

func (s *Store) Resolve(ctx context.Context, messageRef string) (Entry, error) {
	val, err := s.redis.Get(ctx, msgKey(messageRef)).Result()
	if err == redis.Nil {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Store) Forget(ctx context.Context, messageRef string) error {
	return s.redis.Del(ctx, msgKey(messageRef)).Err()
}

func msgKey(messageRef string) string {
	return fmt.Sprintf(msgKeyPrefix, messageRef)
}
