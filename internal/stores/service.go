package stores

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
	"github.com/beacontrade/stocksync-backend/pkg/redis"
)

const tenantCacheScope = "store_client"

type storeRepository interface {
	FindActiveByDomain(ctx context.Context, shopDomain string) (*models.Store, error)
}

// Service resolves shop domains to internal client ids.
type Service interface {
	ResolveTenant(ctx context.Context, shopDomain string) (uuid.UUID, error)
}

type ServiceParams struct {
	Repo     storeRepository
	Cache    redis.KV
	CacheTTL time.Duration
	Logger   *logger.Logger
}

type service struct {
	repo     storeRepository
	cache    redis.KV
	cacheTTL time.Duration
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "store repo required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:     params.Repo,
		cache:    params.Cache,
		cacheTTL: ttl,
		logg:     params.Logger,
	}, nil
}

// ResolveTenant maps a shop domain onto its client id. Unmapped domains are a
// terminal error; a retry from the platform can never succeed without a new
// connection flow.
func (s *service) ResolveTenant(ctx context.Context, shopDomain string) (uuid.UUID, error) {
	if shopDomain == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain required")
	}

	if s.cache != nil {
		key := s.cache.CacheKey(tenantCacheScope, shopDomain)
		if cached, err := s.cache.Get(ctx, key); err == nil {
			if clientID, parseErr := uuid.Parse(cached); parseErr == nil {
				return clientID, nil
			}
		} else if !errors.Is(err, redis.ErrCacheMiss) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "shop_domain", shopDomain), "tenant cache read failed")
		}
	}

	store, err := s.repo.FindActiveByDomain(ctx, shopDomain)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not mapped for domain")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup store by domain")
	}

	if s.cache != nil {
		key := s.cache.CacheKey(tenantCacheScope, shopDomain)
		if err := s.cache.Set(ctx, key, store.ClientID.String(), s.cacheTTL); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "shop_domain", shopDomain), "tenant cache write failed")
		}
	}

	return store.ClientID, nil
}
