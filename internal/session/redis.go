package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yojanamitra-core/server/internal/core/errx"
	"github.com/yojanamitra-core/server/internal/model"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// sessionMeta is the persisted header next to the message list. History lives
// in a Redis list so appends stay additive and ordered under concurrent
// requests for the same session.
type sessionMeta struct {
	SessionID          string         `json:"sessionId"`
	UserID             string         `json:"userId,omitempty"`
	LanguagePreference model.Language `json:"languagePreference"`
	CreatedAt          time.Time      `json:"createdAt"`
	LastActivityAt     time.Time      `json:"lastActivityAt"`
	LowBandwidthMode   bool           `json:"lowBandwidthMode"`
}

// RedisStore keeps sessions in a shared Redis so any instance observes any
// other instance's writes. Idle eviction rides on key TTLs.
type RedisStore struct {
	rdb redis.Cmdable
	cfg Config
}

func NewRedisStore(rdb redis.Cmdable, cfg Config) *RedisStore {
	return &RedisStore{rdb: rdb, cfg: cfg}
}

func (r *RedisStore) metaKey(sessionID string) string {
	return fmt.Sprintf("session:%s:meta", sessionID)
}

func (r *RedisStore) messagesKey(sessionID string) string {
	return fmt.Sprintf("session:%s:messages", sessionID)
}

// GetOrCreate implements Store.
func (r *RedisStore) GetOrCreate(ctx context.Context, sessionID string, lang model.Language) (*model.Session, error) {
	metaKey := r.metaKey(sessionID)

	raw, err := r.rdb.Get(ctx, metaKey).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("key", metaKey).Msg("failed to load session meta")
		return nil, errx.WrapStore(err)
	}

	var meta sessionMeta
	if err == redis.Nil {
		now := time.Now().UTC()
		meta = sessionMeta{
			SessionID:          sessionID,
			LanguagePreference: lang,
			CreatedAt:          now,
			LastActivityAt:     now,
		}
		if err := r.writeMeta(ctx, meta); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal session meta: %w", err)
	}

	history, err := r.loadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		SessionID:          meta.SessionID,
		UserID:             meta.UserID,
		History:            history,
		LanguagePreference: meta.LanguagePreference,
		CreatedAt:          meta.CreatedAt,
		LastActivityAt:     meta.LastActivityAt,
		LowBandwidthMode:   meta.LowBandwidthMode,
	}, nil
}

// AppendMessage implements Store. RPush keeps appends ordered by arrival; the
// low-bandwidth trim runs eagerly right after the push so the stored
// footprint stays bounded.
func (r *RedisStore) AppendMessage(ctx context.Context, sessionID string, msg model.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}

	meta, err := r.readMeta(ctx, sessionID)
	if err != nil {
		return err
	}

	key := r.messagesKey(sessionID)
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message")
		return errx.WrapStore(err)
	}
	if meta.LowBandwidthMode {
		cap := int64(r.cfg.capOrDefault())
		if err := r.rdb.LTrim(ctx, key, -cap, -1).Err(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to trim low-bandwidth history")
			return errx.WrapStore(err)
		}
	}

	meta.LastActivityAt = time.Now().UTC()
	if err := r.writeMeta(ctx, *meta); err != nil {
		return err
	}
	return r.touch(ctx, sessionID)
}

// SetLowBandwidth implements Store.
func (r *RedisStore) SetLowBandwidth(ctx context.Context, sessionID string, on bool) error {
	meta, err := r.readMeta(ctx, sessionID)
	if err != nil {
		return err
	}
	meta.LowBandwidthMode = on
	if err := r.writeMeta(ctx, *meta); err != nil {
		return err
	}
	if on {
		cap := int64(r.cfg.capOrDefault())
		if err := r.rdb.LTrim(ctx, r.messagesKey(sessionID), -cap, -1).Err(); err != nil {
			return errx.WrapStore(err)
		}
	}
	return nil
}

func (r *RedisStore) loadHistory(ctx context.Context, sessionID string) ([]model.Message, error) {
	key := r.messagesKey(sessionID)
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.Message{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session history")
		return nil, errx.WrapStore(err)
	}

	msgs := make([]model.Message, 0, len(rows))
	for i, s := range rows {
		var m model.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("session_id", sessionID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *RedisStore) readMeta(ctx context.Context, sessionID string) (*sessionMeta, error) {
	raw, err := r.rdb.Get(ctx, r.metaKey(sessionID)).Result()
	if err == redis.Nil {
		// first touch without GetOrCreate; start a fresh session header
		now := time.Now().UTC()
		return &sessionMeta{
			SessionID:          sessionID,
			LanguagePreference: model.LangEnglish,
			CreatedAt:          now,
			LastActivityAt:     now,
		}, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	var meta sessionMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal session meta: %w", err)
	}
	return &meta, nil
}

func (r *RedisStore) writeMeta(ctx context.Context, meta sessionMeta) error {
	b, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal session meta: %w", err)
	}
	if err := r.rdb.Set(ctx, r.metaKey(meta.SessionID), b, r.cfg.IdleTTL).Err(); err != nil {
		logx.Error().Err(err).Str("session_id", meta.SessionID).Msg("failed to write session meta")
		return errx.WrapStore(err)
	}
	return nil
}

// touch extends the idle TTL on both session keys.
func (r *RedisStore) touch(ctx context.Context, sessionID string) error {
	if r.cfg.IdleTTL <= 0 {
		return nil
	}
	if ok, err := r.rdb.Expire(ctx, r.messagesKey(sessionID), r.cfg.IdleTTL).Result(); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to extend history TTL")
		return errx.WrapStore(err)
	} else if !ok {
		logx.Warn().Str("session_id", sessionID).Dur("ttl", r.cfg.IdleTTL).Msg("failed to set TTL on session history key")
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
