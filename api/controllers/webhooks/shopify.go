package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beacontrade/stocksync-backend/api/responses"
	shopifywebhook "github.com/beacontrade/stocksync-backend/internal/webhooks/shopify"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
	"github.com/beacontrade/stocksync-backend/pkg/metrics"
)

const (
	headerHmac       = "X-Shopify-Hmac-Sha256"
	headerShopDomain = "X-Shopify-Shop-Domain"
	headerTopic      = "X-Shopify-Topic"
	headerWebhookID  = "X-Shopify-Webhook-Id"
)

type ShopifyWebhookService interface {
	HandleEvent(ctx context.Context, event *shopifywebhook.Event) error
}

type tenantResolver interface {
	ResolveTenant(ctx context.Context, shopDomain string) (uuid.UUID, error)
}

type deliveryGuard interface {
	Acquire(ctx context.Context, eventID, shopDomain, topic string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type deliveryLog interface {
	Record(ctx context.Context, eventID, shopDomain, topic string, payload json.RawMessage) (uuid.UUID, error)
	Complete(ctx context.Context, id uuid.UUID, status enums.DeliveryStatus, responseCode int, errMsg string) error
}

type ShopifyWebhookParams struct {
	Service       ShopifyWebhookService
	Tenants       tenantResolver
	Guard         deliveryGuard
	Log           deliveryLog
	Metrics       *metrics.WebhookMetrics
	WebhookSecret string
	Logger        *logger.Logger
}

// ShopifyWebhook ingests platform deliveries. The signature check runs before
// any datastore access: a forged request must not cause a single row read or
// write.
func ShopifyWebhook(params ShopifyWebhookParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logg := params.Logger

		if params.Service == nil || params.Tenants == nil || params.Guard == nil || params.Log == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook pipeline unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		topic := strings.TrimSpace(r.Header.Get(headerTopic))

		if !validShopifySignature(payload, params.WebhookSecret, r.Header.Get(headerHmac)) {
			if params.Metrics != nil {
				params.Metrics.IncDelivery(topic, "unauthorized")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature invalid"))
			return
		}

		shopDomain := strings.TrimSpace(r.Header.Get(headerShopDomain))
		eventID := strings.TrimSpace(r.Header.Get(headerWebhookID))
		if shopDomain == "" || topic == "" || eventID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook identity headers missing"))
			return
		}

		if logg != nil {
			ctx = logg.WithDelivery(ctx, eventID, shopDomain, topic)
		}
		start := time.Now()

		clientID, err := params.Tenants.ResolveTenant(ctx, shopDomain)
		if err != nil {
			if params.Metrics != nil {
				params.Metrics.IncDelivery(topic, "unmapped")
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithClientID(ctx, clientID.String())
		}

		acquired, err := params.Guard.Acquire(ctx, eventID, shopDomain, topic)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire delivery slot"))
			return
		}
		if !acquired {
			if logg != nil {
				logg.Info(ctx, "duplicate delivery, acknowledging without effect")
			}
			if params.Metrics != nil {
				params.Metrics.IncDelivery(topic, "duplicate")
			}
			responses.WriteSuccess(w, nil)
			return
		}

		deliveryID, err := params.Log.Record(ctx, eventID, shopDomain, topic, payload)
		if err != nil {
			releaseSlot(ctx, params, eventID)
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery"))
			return
		}

		event := &shopifywebhook.Event{
			ID:         eventID,
			ShopDomain: shopDomain,
			Topic:      topic,
			ClientID:   clientID,
			Payload:    payload,
		}

		if err := params.Service.HandleEvent(ctx, event); err != nil {
			releaseSlot(ctx, params, eventID)
			finalize(ctx, params, deliveryID, enums.DeliveryStatusFailed, err)
			if params.Metrics != nil {
				params.Metrics.IncDelivery(topic, "failed")
				params.Metrics.ObserveDuration(topic, time.Since(start))
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		finalize(ctx, params, deliveryID, enums.DeliveryStatusSuccess, nil)
		if params.Metrics != nil {
			params.Metrics.IncDelivery(topic, "success")
			params.Metrics.ObserveDuration(topic, time.Since(start))
		}
		responses.WriteSuccess(w, nil)
	}
}

// releaseSlot frees the idempotency slot so the platform retry of a failed
// delivery is not treated as a duplicate.
func releaseSlot(ctx context.Context, params ShopifyWebhookParams, eventID string) {
	if err := params.Guard.Release(ctx, eventID); err != nil && params.Logger != nil {
		params.Logger.Error(ctx, "release delivery slot failed", err)
	}
}

func finalize(ctx context.Context, params ShopifyWebhookParams, deliveryID uuid.UUID, status enums.DeliveryStatus, cause error) {
	responseCode := http.StatusOK
	errMsg := ""
	if cause != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(cause); typed != nil {
			code = typed.Code()
		}
		responseCode = pkgerrors.MetadataFor(code).HTTPStatus
		errMsg = cause.Error()
	}
	if err := params.Log.Complete(ctx, deliveryID, status, responseCode, errMsg); err != nil && params.Logger != nil {
		params.Logger.Error(ctx, "finalize delivery record failed", err)
	}
}

func validShopifySignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	provided, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), provided)
}
