package studio

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

const (
	// DefaultSessionTTL は最後のアクセスからセッションが破棄されるまでの時間です。
	DefaultSessionTTL    = 30 * time.Minute
	cacheCleanupInterval = 10 * time.Minute
)

// ErrSessionNotFound はセッションが存在しない、または期限切れのときに返されます。
var ErrSessionNotFound = errors.New("session not found")

// Store はセッションをメモリ上に TTL 付きで保持します。
type Store struct {
	sessions *cache.Cache
	runner   Runner
	ttl      time.Duration
}

// NewStore は Store を初期化します。ttl が 0 以下の場合は DefaultSessionTTL を使います。
func NewStore(runner Runner, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	c := cache.New(ttl, cacheCleanupInterval)
	c.OnEvicted(func(id string, _ interface{}) {
		slog.Debug("セッションの有効期限が切れました", "session_id", id)
	})
	return &Store{
		sessions: c,
		runner:   runner,
		ttl:      ttl,
	}
}

// Create は新しいセッションを作成して保存します。
func (st *Store) Create(opts domain.GenerationOptions) (*Session, error) {
	sess, err := New(uuid.NewString(), st.runner, opts)
	if err != nil {
		return nil, err
	}
	st.sessions.Set(sess.ID(), sess, st.ttl)
	return sess, nil
}

// Get はセッションを取得し、有効期限を延長します。
func (st *Store) Get(id string) (*Session, error) {
	v, ok := st.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess, ok := v.(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	st.sessions.Set(id, sess, st.ttl)
	return sess, nil
}

// Delete はセッションを破棄します。
func (st *Store) Delete(id string) {
	st.sessions.Delete(id)
}

// Count は保持しているセッション数を返します。期限切れで未掃除のものも含みます。
func (st *Store) Count() int {
	return st.sessions.ItemCount()
}
