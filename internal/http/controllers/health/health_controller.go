// Package health exposes the liveness endpoint.
package health

import (
	"net/http"

	httperrors "github.com/flizi/authcenter/internal/http/errors"
)

// Controller handles GET /healthz.
type Controller struct{}

func NewController() *Controller { return &Controller{} }

func (c *Controller) Healthz(w http.ResponseWriter, _ *http.Request) {
	httperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
