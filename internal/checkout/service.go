package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/paypal"
	"github.com/shopspring/decimal"
)

const (
	msgNoCart          = "No cart"
	msgCartEmpty       = "Cart empty"
	msgInvalidOrderID  = "Invalid orderID"
	msgPaymentFailed   = "Payment failed"
	msgCaptureNotSaved = "payment captured but order could not be recorded"
)

// Service drives a cart through provider order creation and capture.
type Service interface {
	CreateOrder(ctx context.Context, cartID string) (*paypal.OrderCreateResponse, error)
	CaptureOrder(ctx context.Context, cartID, orderID string) (*CaptureResult, error)
}

// CaptureResult is returned once the order is captured and recorded.
type CaptureResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderID"`
}

type provider interface {
	CreateOrder(ctx context.Context, total string) (*paypal.OrderCreateResponse, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResponse, error)
}

type orderRecorder interface {
	Create(ctx context.Context, order *models.Order) error
}

// ServiceParams wires the checkout collaborators. Snapshots is only consulted
// when SnapshotCart is set.
type ServiceParams struct {
	Carts        cart.Store
	Provider     provider
	Orders       orderRecorder
	Snapshots    SnapshotStore
	SnapshotCart bool
	Logger       *logger.Logger
	Metrics      *metrics.CheckoutMetrics
	Now          func() time.Time
}

type service struct {
	carts        cart.Store
	provider     provider
	orders       orderRecorder
	snapshots    SnapshotStore
	snapshotCart bool
	logg         *logger.Logger
	metrics      *metrics.CheckoutMetrics
	now          func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	if p.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if p.Provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.SnapshotCart && p.Snapshots == nil {
		return nil, fmt.Errorf("snapshot store required when cart snapshots are enabled")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		carts:        p.Carts,
		provider:     p.Provider,
		orders:       p.Orders,
		snapshots:    p.Snapshots,
		snapshotCart: p.SnapshotCart,
		logg:         p.Logger,
		metrics:      p.Metrics,
		now:          p.Now,
	}, nil
}

// CreateOrder prices the session cart and opens a provider order for it.
// The cart is never modified here.
func (s *service) CreateOrder(ctx context.Context, cartID string) (*paypal.OrderCreateResponse, error) {
	ctx = s.logg.WithCartID(ctx, cartID)

	if strings.TrimSpace(cartID) == "" {
		return nil, s.fail(ctx, operationCreate, pkgerrors.New(pkgerrors.CodeCartEmpty, msgNoCart))
	}
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, s.fail(ctx, operationCreate, err)
	}
	if c.IsEmpty() {
		return nil, s.fail(ctx, operationCreate, pkgerrors.New(pkgerrors.CodeCartEmpty, msgCartEmpty))
	}
	s.metrics.IncTransition(operationCreate, StateCartPending.String())

	total := CartTotal(c.Items)
	order, err := s.provider.CreateOrder(ctx, total)
	if err != nil {
		return nil, s.fail(ctx, operationCreate, err)
	}

	ctx = s.logg.WithOrderID(ctx, order.ID)
	if s.snapshotCart {
		if err := s.snapshots.Save(ctx, order.ID, c.Items); err != nil {
			s.logg.Error(ctx, "checkout snapshot not stored; capture will read the live cart", err)
		}
	}

	s.metrics.IncTransition(operationCreate, StateOrderCreated.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"total": total, "items": len(c.Items)}), "checkout order created")
	return order, nil
}

// CaptureOrder finalizes payment and records the order. Persisting the order
// is the commit point; clearing the cart afterwards is best effort.
func (s *service) CaptureOrder(ctx context.Context, cartID, orderID string) (*CaptureResult, error) {
	if orderID == "" {
		return nil, s.fail(ctx, operationCapture, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidOrderID))
	}
	ctx = s.logg.WithOrderID(s.logg.WithCartID(ctx, cartID), orderID)
	s.metrics.IncTransition(operationCapture, StateCaptureRequested.String())

	capture, err := s.provider.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, s.fail(ctx, operationCapture, err)
	}
	if !capture.Completed() {
		s.logg.Warn(s.logg.WithField(ctx, "provider_status", capture.Status), "payment not completed")
		notCompleted := pkgerrors.New(pkgerrors.CodePaymentNotCompleted, msgPaymentFailed).
			WithDetails(json.RawMessage(capture.Raw))
		return nil, s.fail(ctx, operationCapture, notCompleted)
	}

	order, err := s.buildOrder(ctx, cartID, orderID, capture)
	if err != nil {
		return nil, s.fail(ctx, operationCapture, err)
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "total", order.Total.StringFixed(2)), msgCaptureNotSaved, err)
		return nil, s.fail(ctx, operationCapture, err)
	}

	s.cleanup(ctx, cartID, orderID)
	s.metrics.IncTransition(operationCapture, StatePaid.String())
	s.logg.Info(s.logg.WithField(ctx, "total", order.Total.StringFixed(2)), "checkout order paid")
	return &CaptureResult{Success: true, OrderID: order.ID}, nil
}

// buildOrder records the order under the id the provider returned, falling
// back to the requested id when the capture omits it.
func (s *service) buildOrder(ctx context.Context, cartID, orderID string, capture *paypal.CaptureResponse) (*models.Order, error) {
	value, ok := capture.CapturedAmount()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeProviderProtocol, "captured amount missing")
	}
	total, err := decimal.NewFromString(value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProviderProtocol, err, "captured amount is not a decimal")
	}

	items := s.capturedItems(ctx, cartID, orderID)
	if items == nil {
		items = []cart.Item{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order items")
	}

	recordedID := capture.ID
	if recordedID == "" {
		recordedID = orderID
	}
	return &models.Order{
		ID:            recordedID,
		CustomerEmail: capture.Payer.EmailAddress,
		Items:         string(encoded),
		Total:         total,
		Status:        enums.OrderStatusPaid,
		CreatedAt:     s.now().UnixMilli(),
	}, nil
}

// capturedItems prefers the snapshot taken at create time when enabled and
// falls back to whatever the session cart holds now. The payment has already
// been taken, so a read failure records no items instead of failing.
func (s *service) capturedItems(ctx context.Context, cartID, orderID string) []cart.Item {
	if s.snapshotCart {
		items, found, err := s.snapshots.Load(ctx, orderID)
		if err != nil {
			s.logg.Error(ctx, "checkout snapshot unavailable; using live cart", err)
		} else if found {
			return items
		}
	}
	if strings.TrimSpace(cartID) == "" {
		return nil
	}
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		s.logg.Error(ctx, "cart unavailable at capture; recording no items", err)
		return nil
	}
	if c == nil {
		return nil
	}
	return c.Items
}

func (s *service) cleanup(ctx context.Context, cartID, orderID string) {
	if strings.TrimSpace(cartID) != "" {
		if err := s.carts.Delete(ctx, cartID); err != nil {
			s.logg.Error(ctx, "cart not cleared after capture", err)
		}
	}
	if s.snapshotCart {
		if err := s.snapshots.Delete(ctx, orderID); err != nil {
			s.logg.Error(ctx, "checkout snapshot not cleared after capture", err)
		}
	}
}

func (s *service) fail(ctx context.Context, operation string, err error) error {
	s.metrics.IncTransition(operation, StateFailed.String())
	if typed := pkgerrors.As(err); typed != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"operation": operation,
			"code":      string(typed.Code()),
		}), "checkout step failed")
	}
	return err
}
