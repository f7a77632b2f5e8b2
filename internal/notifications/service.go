package notifications

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// DefaultTTL is how long a notification stays visible when no TTL is configured.
const DefaultTTL = 4 * time.Second

// Notification is a transient, user-facing message scoped to one cart.
type Notification struct {
	ID        string         `json:"id"`
	Scope     string         `json:"-"`
	Severity  enums.Severity `json:"severity"`
	Message   string         `json:"message"`
	Code      string         `json:"code,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`

	seq uint64
}

// Listener receives every published notification.
type Listener func(Notification)

// Service holds visible notifications in a TTL cache; entries vanish on
// their own once they expire.
type Service struct {
	cache   *ttlcache.Cache[string, Notification]
	ttl     time.Duration
	seq     atomic.Uint64
	running atomic.Bool
	now     func() time.Time
	logg    *logger.Logger

	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextSub   uint64
}

func NewService(ttl time.Duration, logg *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logg == nil {
		logg = logger.Nop()
	}
	cache := ttlcache.New[string, Notification](
		ttlcache.WithTTL[string, Notification](ttl),
		ttlcache.WithDisableTouchOnHit[string, Notification](),
	)
	return &Service{
		cache:     cache,
		ttl:       ttl,
		now:       time.Now,
		logg:      logg,
		listeners: map[uint64]Listener{},
	}
}

// Subscribe registers fn and returns a handle for Unsubscribe.
func (s *Service) Subscribe(fn Listener) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	s.listeners[s.nextSub] = fn
	return s.nextSub
}

func (s *Service) Unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

// Start runs the background expiry loop until Stop is called. Repeated calls
// are no-ops.
func (s *Service) Start() {
	if s.running.CompareAndSwap(false, true) {
		go s.cache.Start()
	}
}

// Stop ends the expiry loop. It is safe to call on a service never started.
func (s *Service) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.cache.Stop()
	}
}

// Publish queues a message for scope and returns it.
func (s *Service) Publish(ctx context.Context, scope string, severity enums.Severity, message string) Notification {
	return s.publish(ctx, scope, severity, message, "")
}

func (s *Service) publish(ctx context.Context, scope string, severity enums.Severity, message string, code pkgerrors.Code) Notification {
	if !severity.IsValid() {
		severity = enums.SeverityInfo
	}
	now := s.now()
	n := Notification{
		ID:        uuid.NewString(),
		Scope:     strings.TrimSpace(scope),
		Severity:  severity,
		Message:   message,
		Code:      string(code),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		seq:       s.seq.Add(1),
	}
	s.cache.Set(n.ID, n, s.ttl)
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"notification_id": n.ID,
		"severity":        string(severity),
	}), "notification.published")

	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(n)
	}
	return n
}

// PublishError turns err into a notification via FromError.
func (s *Service) PublishError(ctx context.Context, scope string, err error) Notification {
	if err == nil {
		return Notification{}
	}
	if pkgerrors.As(err) == nil {
		s.logg.Error(ctx, "notification.untyped_error", err)
	}
	severity, message, code := FromError(err)
	return s.publish(ctx, scope, severity, message, code)
}

// FromError derives what the shopper sees for err. Typed errors keep their
// message and severity; anything else becomes a generic failure.
func FromError(err error) (enums.Severity, string, pkgerrors.Code) {
	typed := pkgerrors.As(err)
	if typed == nil {
		meta := pkgerrors.MetadataFor(pkgerrors.CodeInternal)
		return meta.Severity, "Something went wrong, please try again", pkgerrors.CodeInternal
	}
	meta := pkgerrors.MetadataFor(typed.Code())
	message := typed.Message()
	if message == "" {
		message = meta.PublicMessage
	}
	return meta.Severity, message, typed.Code()
}

// Notify and NotifyError let the service stand in as the cart notifier.
func (s *Service) Notify(ctx context.Context, scope string, severity enums.Severity, message string) {
	s.Publish(ctx, scope, severity, message)
}

func (s *Service) NotifyError(ctx context.Context, scope string, err error) {
	s.PublishError(ctx, scope, err)
}

// Visible lists unexpired notifications for scope, oldest first.
func (s *Service) Visible(scope string) []Notification {
	scope = strings.TrimSpace(scope)
	now := s.now()
	out := make([]Notification, 0)
	for _, item := range s.cache.Items() {
		n := item.Value()
		if n.Scope != scope || item.IsExpired() || !now.Before(n.ExpiresAt) {
			continue
		}
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b Notification) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

// Dismiss removes a notification early. It reports whether one was removed.
func (s *Service) Dismiss(scope, id string) bool {
	item := s.cache.Get(id)
	if item == nil || item.Value().Scope != strings.TrimSpace(scope) {
		return false
	}
	s.cache.Delete(id)
	return true
}
