package activitylog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vms/internal/activitylog/metrics"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/requestcontext"
)

const (
	// DefaultRecentLimit is used when a caller does not ask for a specific page size.
	DefaultRecentLimit = 50
	// MaxRecentLimit bounds a single read.
	MaxRecentLimit = 500
)

// Store is the durable home of entries. Recent returns newest first.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}

// RecentCache is a bounded newest-first copy of the log kept in front of the store.
type RecentCache interface {
	Push(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}

// Publisher mirrors entries to an external stream.
type Publisher interface {
	Publish(ctx context.Context, entry *Entry) error
}

// Service is the log sink. Appends go to the store synchronously; the cache and
// publishers are best-effort mirrors.
type Service struct {
	store      Store
	cache      RecentCache
	publishers []Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	ids        *idSource
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRecentCache serves Recent reads from cache when it holds enough entries.
func WithRecentCache(cache RecentCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithPublisher adds a mirror that receives every appended entry.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publishers = append(s.publishers, p)
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		ids:    newIDSource(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records one entry. An empty level defaults to INFO; details are never nil.
func (s *Service) Append(ctx context.Context, action string, details Details, level Level) (*Entry, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "log action is required")
	}
	if level == "" {
		level = LevelInfo
	}
	if !level.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown log level: "+string(level))
	}
	if details == nil {
		details = Details{}
	}

	now := requestcontext.Now(ctx).UTC()
	entry := &Entry{
		ID:        s.ids.next(now),
		Timestamp: now,
		Level:     level,
		Action:    action,
		Details:   details,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append log entry")
	}
	s.metrics.IncAppended(string(level), action)
	s.mirror(ctx, entry)
	return entry, nil
}

func (s *Service) mirror(ctx context.Context, entry *Entry) {
	if s.cache != nil {
		if err := s.cache.Push(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "failed to cache log entry",
				"request_id", requestcontext.RequestID(ctx),
				"entry_id", entry.ID,
				"error", err,
			)
		}
	}
	for _, p := range s.publishers {
		start := time.Now()
		err := p.Publish(ctx, entry)
		s.metrics.ObservePublish(time.Since(start), err)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to publish log entry",
				"request_id", requestcontext.RequestID(ctx),
				"entry_id", entry.ID,
				"action", entry.Action,
				"error", err,
			)
		}
	}
}

// Recent returns up to limit entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	if s.cache != nil {
		entries, err := s.cache.Recent(ctx, limit)
		if err == nil && len(entries) >= limit {
			return entries, nil
		}
		if err != nil {
			s.logger.WarnContext(ctx, "recent log cache read failed, falling back to store",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	entries, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read recent log entries")
	}
	return entries, nil
}
