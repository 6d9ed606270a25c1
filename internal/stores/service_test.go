package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
	"github.com/beacontrade/stocksync-backend/pkg/redis"
)

type fakeStoreRepo struct {
	findFn func(ctx context.Context, shopDomain string) (*models.Store, error)
	calls  int
}

func (f *fakeStoreRepo) FindActiveByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	f.calls++
	if f.findFn != nil {
		return f.findFn(ctx, shopDomain)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeKV struct {
	data    map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if val, ok := f.data[key]; ok {
		return val, nil
	}
	return "", redis.ErrCacheMiss
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value.(string)
	f.setKeys = append(f.setKeys, key)
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error { return nil }

func (f *fakeKV) CacheKey(scope, id string) string { return scope + ":" + id }

func TestResolveTenant_DBThenCache(t *testing.T) {
	clientID := uuid.New()
	repo := &fakeStoreRepo{findFn: func(ctx context.Context, shopDomain string) (*models.Store, error) {
		return &models.Store{ClientID: clientID, ShopDomain: shopDomain, Active: true}, nil
	}}
	cache := newFakeKV()

	svc, err := NewService(ServiceParams{Repo: repo, Cache: cache})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.ResolveTenant(context.Background(), "acme.myshopify.com")
	if err != nil {
		t.Fatalf("ResolveTenant: %v", err)
	}
	if got != clientID {
		t.Fatalf("expected %s, got %s", clientID, got)
	}
	if len(cache.setKeys) != 1 {
		t.Fatalf("expected cache write, got %v", cache.setKeys)
	}

	// second resolve should be served from cache
	if _, err := svc.ResolveTenant(context.Background(), "acme.myshopify.com"); err != nil {
		t.Fatalf("cached resolve: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected single repo hit, got %d", repo.calls)
	}
}

func TestResolveTenant_UnmappedDomain(t *testing.T) {
	repo := &fakeStoreRepo{}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.ResolveTenant(context.Background(), "ghost.myshopify.com")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolveTenant_CacheFailureFallsBackToDB(t *testing.T) {
	clientID := uuid.New()
	repo := &fakeStoreRepo{findFn: func(ctx context.Context, shopDomain string) (*models.Store, error) {
		return &models.Store{ClientID: clientID}, nil
	}}
	cache := newFakeKV()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")

	svc, err := NewService(ServiceParams{Repo: repo, Cache: cache})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.ResolveTenant(context.Background(), "acme.myshopify.com")
	if err != nil {
		t.Fatalf("ResolveTenant: %v", err)
	}
	if got != clientID {
		t.Fatalf("expected %s, got %s", clientID, got)
	}
}

func TestResolveTenant_EmptyDomain(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &fakeStoreRepo{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.ResolveTenant(context.Background(), ""); err == nil {
		t.Fatal("expected validation error")
	}
}
