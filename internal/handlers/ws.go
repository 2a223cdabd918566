package handlers

import (
	"net/http"

	"github.com/ipex/docregistro/internal/middleware"
	"github.com/ipex/docregistro/internal/websocket"
)

// serveWs streams record events to an authenticated listener
func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	if r.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Live updates disabled")
		return
	}
	websocket.ServeWs(r.hub, middleware.UserID(req.Context()), w, req)
}
