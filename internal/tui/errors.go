package tui

import (
	"errors"

	"github.com/mrodrigc/campuseats-client/internal/adapter"
)

// humanizeError folds transport noise into a short Spanish message fit for
// the status line.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, adapter.ErrUnavailable) {
		return "Sin conexión con el servidor"
	}
	if errors.Is(err, adapter.ErrUnauthorized) {
		return "Sesión expirada, vuelve a iniciar sesión"
	}
	return err.Error()
}
