package shopifywebhook

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func decodePayload(raw json.RawMessage, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload").WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(dest); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			details := map[string]string{}
			for _, fieldErr := range errs {
				details[fieldErr.Field()] = "is invalid"
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "webhook payload validation failed").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "webhook payload validation failed")
	}
	return nil
}

// Shopify sends numeric ids as JSON numbers. They are opaque to us, so they
// are normalized to strings on the way in.
func idString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

type orderLineItem struct {
	VariantID int64  `json:"variant_id"`
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Price     string `json:"price"`
}

func (li orderLineItem) unitPrice() decimal.Decimal {
	if li.Price == "" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(li.Price)
	if err != nil {
		return decimal.Zero
	}
	return price
}

type orderPayload struct {
	ID        int64           `json:"id" validate:"required"`
	Name      string          `json:"name"`
	LineItems []orderLineItem `json:"line_items" validate:"required,min=1,dive"`
}

type refundLineItem struct {
	Quantity    int           `json:"quantity" validate:"required,min=1"`
	RestockType string        `json:"restock_type"`
	LineItem    orderLineItem `json:"line_item"`
}

type refundPayload struct {
	ID              int64            `json:"id" validate:"required"`
	OrderID         int64            `json:"order_id"`
	RefundLineItems []refundLineItem `json:"refund_line_items" validate:"required,min=1,dive"`
}

type inventoryLevelPayload struct {
	InventoryItemID int64  `json:"inventory_item_id" validate:"required"`
	LocationID      int64  `json:"location_id"`
	Available       int    `json:"available"`
	UpdatedAt       string `json:"updated_at"`
}

type productVariant struct {
	ID              int64  `json:"id" validate:"required"`
	SKU             string `json:"sku"`
	Title           string `json:"title"`
	InventoryItemID int64  `json:"inventory_item_id"`
}

type productPayload struct {
	ID       int64            `json:"id" validate:"required"`
	Title    string           `json:"title"`
	Status   string           `json:"status"`
	Variants []productVariant `json:"variants" validate:"dive"`
}

type fulfillmentPayload struct {
	ID              int64           `json:"id" validate:"required"`
	OrderID         int64           `json:"order_id" validate:"required"`
	Status          string          `json:"status"`
	TrackingCompany string          `json:"tracking_company"`
	TrackingNumber  string          `json:"tracking_number"`
	LineItems       []orderLineItem `json:"line_items"`
}

type compliancePayload struct {
	ShopID     int64  `json:"shop_id"`
	ShopDomain string `json:"shop_domain"`
	Customer   struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"customer"`
	OrdersRequested []int64 `json:"orders_requested"`
}
