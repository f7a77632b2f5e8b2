package checkout

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/handoff"
	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type cartService interface {
	Snapshot(ctx context.Context, cartID string) (cart.Snapshot, error)
	Clear(ctx context.Context, cartID string) (cart.Snapshot, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, link string) (string, error)
}

type notifier interface {
	Notify(ctx context.Context, scope string, severity enums.Severity, message string)
	NotifyError(ctx context.Context, scope string, err error)
}

// Config holds the destination of every order handoff.
type Config struct {
	DestinationPhone  string
	PhoneFormat       handoff.PhoneFormat
	MessagingHost     string
	ClearAfterHandoff bool
}

// Params wires the checkout service.
type Params struct {
	Config     Config
	Carts      cartService
	Encoder    *handoff.Encoder
	Dispatcher dispatcher
	Notifier   notifier
	Metrics    *metrics.HandoffMetrics
	Logger     *logger.Logger
}

// Result reports how far a checkout got. State is the last state reached,
// so a failed dispatch still carries the encoded message and link.
type Result struct {
	State     enums.CheckoutState `json:"state"`
	OrderKind enums.OrderKind     `json:"order_kind,omitempty"`
	Total     decimal.Decimal     `json:"total"`
	Message   string              `json:"message,omitempty"`
	Link      string              `json:"link,omitempty"`
	Strategy  string              `json:"strategy,omitempty"`
}

func (r *Result) advance() {
	r.State = r.State.Next()
}

// Service turns a cart into an order message and hands it to the
// messaging channel. Idle → Composing → Encoded → Dispatched, no retries.
type Service struct {
	cfg        Config
	destPhone  string
	carts      cartService
	encoder    *handoff.Encoder
	dispatcher dispatcher
	notifier   notifier
	metrics    *metrics.HandoffMetrics
	logg       *logger.Logger
	validate   *validator.Validate
}

func NewService(p Params) (*Service, error) {
	if p.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if p.Encoder == nil {
		return nil, fmt.Errorf("encoder required")
	}
	if p.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if p.Config.PhoneFormat == (handoff.PhoneFormat{}) {
		p.Config.PhoneFormat = handoff.IndiaPhoneFormat
	}
	dest, err := handoff.NormalizePhone(p.Config.DestinationPhone, p.Config.PhoneFormat)
	if err != nil {
		return nil, fmt.Errorf("destination phone: %w", err)
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &Service{
		cfg:        p.Config,
		destPhone:  dest,
		carts:      p.Carts,
		encoder:    p.Encoder,
		dispatcher: p.Dispatcher,
		notifier:   p.Notifier,
		metrics:    p.Metrics,
		logg:       p.Logger,
		validate:   newValidator(),
	}, nil
}

// Checkout encodes the cart for customer and dispatches it. The cart is
// left intact unless ClearAfterHandoff is set, since the order is only
// confirmed out of band.
func (s *Service) Checkout(ctx context.Context, cartID string, customer handoff.Customer) (Result, error) {
	res := Result{State: enums.CheckoutStateIdle}
	ctx = s.logg.WithCartID(ctx, cartID)

	if err := s.validateCustomer(customer); err != nil {
		return res, s.fail(ctx, cartID, err)
	}
	snap, err := s.carts.Snapshot(ctx, cartID)
	if err != nil {
		return res, s.fail(ctx, cartID, err)
	}
	if snap.IsEmpty() {
		return res, s.fail(ctx, cartID, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty"))
	}

	res.advance()
	res.OrderKind = snap.OrderKind()
	res.Total = snap.TotalAmount
	ctx = s.logg.WithOrderKind(ctx, string(res.OrderKind))

	res.Message = s.encoder.Encode(snap, customer)
	res.Link = handoff.DeepLink(s.cfg.MessagingHost, s.destPhone, res.Message)
	res.advance()
	s.metrics.IncEncoded(string(res.OrderKind))

	strategy, err := s.dispatcher.Dispatch(ctx, res.Link)
	if err != nil {
		return res, s.fail(ctx, cartID, err)
	}
	res.Strategy = strategy
	res.advance()
	s.logg.Info(ctx, "checkout.dispatched")

	if s.notifier != nil {
		s.notifier.Notify(ctx, cartID, enums.SeveritySuccess, "Your order is ready to send")
	}
	if s.cfg.ClearAfterHandoff {
		if _, err := s.carts.Clear(ctx, cartID); err != nil {
			s.logg.Error(ctx, "checkout.clear_failed", err)
		}
	}
	return res, nil
}

func (s *Service) fail(ctx context.Context, cartID string, err error) error {
	if s.notifier != nil {
		s.notifier.NotifyError(ctx, cartID, err)
	}
	return err
}

// validateCustomer requires a name and a phone number. Other fields are
// optional but must be well formed when present.
func (s *Service) validateCustomer(c handoff.Customer) error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.FirstName) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return pkgerrors.Newf(pkgerrors.CodeMissingRequiredField, "please enter your %s", strings.Join(missing, " and ")).
			WithDetails(map[string]any{"fields": missing})
	}
	if err := s.validate.Struct(c); err != nil {
		details := map[string]string{}
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "some details look invalid").WithDetails(details)
	}
	return nil
}

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
