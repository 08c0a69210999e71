package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/leadline/internal/auth"
)

// Handler upgrades an authorized admin request and runs it as a hub client.
// Cross-origin upgrades are refused unless the origin matches one of
// originPatterns.
func Handler(hub *Hub, logger *slog.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		ac, _ := auth.FromContext(r.Context())
		NewClient(hub, conn, ac.Email, ac.SessionID).Run(r.Context())
	}
}
