package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"farmshop/internal/audit"
	"farmshop/internal/cart"
	"farmshop/internal/notify"
	"farmshop/internal/orders/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/requestcontext"
)

const (
	stepPrice   = "price"
	stepCreate  = "create_order"
	stepStock   = "decrement_stock"
	stepNotify  = "notify"
	stepClear   = "clear_cart"
	stepSession = "complete_session"
)

type stockChange struct {
	productID id.ProductID
	quantity  int
}

// placeOrder creates the order with its lines, decrements stock and then
// runs the best-effort tail (mail, cart clear, completion marker). A failure
// before the tail undoes applied stock changes and cancels the order; the
// cart is left alone.
func (s *Service) placeOrder(ctx context.Context, cartSession string, userID id.UserID, sess *Session, c cart.State) (*Result, error) {
	start := time.Now()
	defer s.metrics.ObserveCheckout(start)

	ctx, span := s.tracer.Start(ctx, "checkout.confirm", trace.WithAttributes(
		attribute.Int("cart.items", len(c.Items)),
		attribute.String("delivery_method", string(sess.Shipping.DeliveryMethod)),
	))
	defer span.End()

	var order *models.Order
	if err := s.step(ctx, stepPrice, func(ctx context.Context) error {
		var err error
		order, err = s.buildOrder(ctx, userID, sess.Shipping, c)
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.step(ctx, stepCreate, func(ctx context.Context) error {
		return s.orders.Create(ctx, order)
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create order")
	}
	span.SetAttributes(attribute.Int64("order.number", order.Number))

	var applied []stockChange
	if err := s.step(ctx, stepStock, func(ctx context.Context) error {
		for _, it := range order.Items {
			if err := s.stock.AdjustStock(ctx, it.ProductID, -it.Quantity); err != nil {
				return err
			}
			applied = append(applied, stockChange{productID: it.ProductID, quantity: it.Quantity})
		}
		return nil
	}); err != nil {
		s.compensate(ctx, order, applied)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update stock")
	}

	result := &Result{Order: order}
	if err := s.step(ctx, stepNotify, func(ctx context.Context) error {
		return s.sendConfirmation(ctx, order, sess.Shipping)
	}); err != nil {
		result.Warning = "order placed but the confirmation email could not be sent"
	}

	if err := s.step(ctx, stepClear, func(ctx context.Context) error {
		return s.carts.Clear(ctx, cartSession)
	}); err != nil {
		s.logger.WarnContext(ctx, "order placed but cart not cleared",
			"order_id", order.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	done := newSession()
	done.JustCompleted = &Completion{OrderID: order.ID, OrderNumber: order.Number}
	if err := s.step(ctx, stepSession, func(ctx context.Context) error {
		return s.sessions.Save(ctx, sessionPrefix+cartSession, done)
	}); err != nil {
		s.logger.WarnContext(ctx, "order placed but checkout session not updated",
			"order_id", order.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	s.metrics.IncrementOrdersPlaced()
	s.audit.Record(ctx, audit.EventOrderPlaced, userID, order.ID.String(),
		"order_number", order.Number,
		"total", order.TotalAmount,
		"delivery_method", string(order.DeliveryMethod),
	)
	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID.String(),
		"order_number", order.Number,
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}

// step runs fn inside a child span and counts failures per step.
func (s *Service) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "checkout."+name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
		s.metrics.IncrementCheckoutFailure(name)
		return err
	}
	return nil
}

// buildOrder captures live prices. Products that vanished or were disabled
// since they went into the cart stop the checkout.
func (s *Service) buildOrder(ctx context.Context, userID id.UserID, details ShippingDetails, c cart.State) (*models.Order, error) {
	now := requestcontext.Now(ctx)
	o := &models.Order{
		ID:             id.NewOrderID(),
		UserID:         userID,
		Status:         models.StatusPending,
		DeliveryMethod: details.DeliveryMethod,
		CustomerName:   details.CustomerName(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Items:          make([]models.Item, 0, len(c.Items)),
	}
	if details.DeliveryMethod.Ships() {
		o.ShippingAddress = details.Address
		o.ShippingCity = details.City
		o.ShippingState = details.State
		o.ShippingZip = details.ZipCode
	}

	itemsTotal := decimal.Zero
	for _, it := range c.Items {
		p, err := s.products.Product(ctx, it.ProductID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return nil, dErrors.New(dErrors.CodeConflict, "product "+it.Name+" is no longer available")
			}
			return nil, err
		}
		if p.Disabled {
			return nil, dErrors.New(dErrors.CodeConflict, "product "+p.Name+" is no longer available")
		}
		line := models.Item{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			Name:      p.Name,
			Unit:      p.Unit,
		}
		o.Items = append(o.Items, line)
		itemsTotal = itemsTotal.Add(line.LineTotal())
	}
	o.TotalAmount = TotalWithDelivery(itemsTotal, details.DeliveryMethod, s.deliveryCost)
	return o, nil
}

// compensate restores stock and cancels the order. It runs detached from
// the request so a disconnecting client cannot stop it halfway.
func (s *Service) compensate(ctx context.Context, order *models.Order, applied []stockChange) {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		ch := applied[i]
		if err := s.stock.AdjustStock(ctx, ch.productID, ch.quantity); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.orders.UpdateStatus(ctx, order.ID, models.StatusCancelled, requestcontext.Now(ctx)); err != nil {
		errs = append(errs, err)
	}
	order.Status = models.StatusCancelled
	if err := errors.Join(errs...); err != nil {
		s.logger.ErrorContext(ctx, "checkout compensation incomplete",
			"order_id", order.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (s *Service) sendConfirmation(ctx context.Context, order *models.Order, details ShippingDetails) error {
	if s.notifier == nil {
		return nil
	}
	lines := make([]notify.OrderLine, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, notify.OrderLine{
			Name:      it.Name,
			Unit:      it.Unit,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		})
	}
	return s.notifier.OrderConfirmation(ctx, notify.OrderConfirmation{
		OrderNumber:  order.Number,
		CustomerName: order.CustomerName,
		Email:        details.Email,
		Ship:         order.DeliveryMethod.Ships(),
		DeliveryCost: s.deliveryCost,
		Address:      order.ShippingAddress,
		City:         order.ShippingCity,
		State:        order.ShippingState,
		Zip:          order.ShippingZip,
		Items:        lines,
		Total:        order.TotalAmount,
	})
}
