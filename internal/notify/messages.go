package notify

import (
	"fmt"

	"github.com/mrodrigc/campuseats-client/models"
)

// statusMessages is the per-status message catalog for transitions.
var statusMessages = map[models.OrderStatus]string{
	models.StatusPending:   "Tu pedido fue recibido",
	models.StatusPreparing: "Tu pedido está en preparación",
	models.StatusReady:     "¡Tu pedido está listo para recoger!",
	models.StatusCompleted: "Pedido completado. ¡Buen provecho!",
	models.StatusCancelled: "Tu pedido fue cancelado",
}

// vendorCreatedMessage announces a fresh order on the vendor dashboard.
const vendorCreatedMessage = "Nuevo pedido recibido"

// messageFor composes the human-readable title and body for one event.
func messageFor(ev models.OrderEvent) (title, body string) {
	switch ev.Kind {
	case models.OrderCreated:
		if ev.Feed == models.FeedVendor {
			title = vendorCreatedMessage
		} else {
			title = statusMessages[models.StatusPending]
		}
	default:
		msg, ok := statusMessages[ev.Order.Status]
		if !ok {
			// unknown status from a newer server: display it as-is
			msg = fmt.Sprintf("Tu pedido cambió a %s", ev.Order.Status)
		}
		title = msg
	}

	body = fmt.Sprintf("Pedido #%s · %s", ev.Order.Key(), ev.Order.StoreName)
	if ev.Feed == models.FeedVendor && ev.Order.BuyerName != "" {
		body = fmt.Sprintf("Pedido #%s · %s", ev.Order.Key(), ev.Order.BuyerName)
	}
	return title, body
}

// levelFor picks the toast style for a status.
func levelFor(ev models.OrderEvent) ToastLevel {
	switch {
	case ev.Order.Status == models.StatusCancelled:
		return ToastWarning
	case ev.Order.Status.Terminal() || ev.Order.Status == models.StatusReady:
		return ToastSuccess
	default:
		return ToastInfo
	}
}
