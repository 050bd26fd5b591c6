// Package listeners turns domain events into metrics.
package listeners

import (
	"context"
	"sync"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/app/services"
	"github.com/mogusu300/b2zi-merchant/pkg/event"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
	"github.com/mogusu300/b2zi-merchant/pkg/metrics"
)

var once sync.Once

// Register subscribes the metric listeners. Safe to call more than once.
func Register() {
	once.Do(register)
}

func register() {
	event.Listen(services.EventOrderCreated, func(_ context.Context, p interface{}) {
		o, ok := p.(models.Order)
		if !ok {
			return
		}
		metrics.OrdersCreated.Inc()
		for _, it := range o.Items {
			metrics.OrderItemsSold.Add(float64(it.Quantity))
		}
	})

	event.Listen(services.EventOrderRejected, func(_ context.Context, p interface{}) {
		if r, ok := p.(services.OrderRejected); ok {
			metrics.OrdersRejected.WithLabelValues(r.Reason).Inc()
		}
	})

	event.Listen(services.EventOrderStatusChanged, func(ctx context.Context, p interface{}) {
		c, ok := p.(services.OrderStatusChanged)
		if !ok {
			return
		}
		metrics.OrderTransitions.WithLabelValues(string(c.From), string(c.To)).Inc()
		if c.Restock {
			logger.WithCtx(ctx).Debug("stock restored", "order_id", c.OrderID)
		}
	})

	event.Listen(services.EventMerchantDecided, func(_ context.Context, p interface{}) {
		if d, ok := p.(services.MerchantDecided); ok {
			metrics.MerchantDecisions.WithLabelValues(string(d.To)).Inc()
		}
	})

	event.Listen(services.EventMerchantRegistered, func(context.Context, interface{}) {
		metrics.Registrations.WithLabelValues("merchant").Inc()
	})
	event.Listen(services.EventCustomerRegistered, func(context.Context, interface{}) {
		metrics.Registrations.WithLabelValues("customer").Inc()
	})
}
