package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"mariiahub/models"
	"mariiahub/utils"
)

// DraftStore persists booking drafts between wizard steps so a reload resumes
// at the same step with the same gating.
type DraftStore interface {
	Save(ctx context.Context, draft *models.BookingDraft) error
	Get(ctx context.Context, draftID string) (*models.BookingDraft, error)
	Delete(ctx context.Context, draftID string) error
	// MapIntent indexes a payment intent id back to its draft so webhook
	// events can find the draft they belong to.
	MapIntent(ctx context.Context, intentID, draftID string) error
	DraftIDForIntent(ctx context.Context, intentID string) (string, error)
}

const intentKeyPrefix = "intent:"

// RedisDraftStore stores drafts as JSON in Redis with a rolling TTL.
type RedisDraftStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisDraftStore constructs the production draft store.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{Client: client, TTL: ttl}
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *models.BookingDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, utils.DraftKeyPrefix+draft.DraftID, data, s.TTL).Err()
}

func (s *RedisDraftStore) Get(ctx context.Context, draftID string) (*models.BookingDraft, error) {
	data, err := s.Client.Get(ctx, utils.DraftKeyPrefix+draftID).Result()
	if err == redis.Nil {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	var draft models.BookingDraft
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, draftID string) error {
	return s.Client.Del(ctx, utils.DraftKeyPrefix+draftID).Err()
}

func (s *RedisDraftStore) MapIntent(ctx context.Context, intentID, draftID string) error {
	return s.Client.Set(ctx, intentKeyPrefix+intentID, draftID, s.TTL).Err()
}

func (s *RedisDraftStore) DraftIDForIntent(ctx context.Context, intentID string) (string, error) {
	draftID, err := s.Client.Get(ctx, intentKeyPrefix+intentID).Result()
	if err == redis.Nil {
		return "", ErrDraftNotFound
	}
	if err != nil {
		return "", err
	}
	return draftID, nil
}
