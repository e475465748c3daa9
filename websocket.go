package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

// createWebsocketHandler streams a JSON snapshot of every pin to the client
// each time a pin changes state.
func createWebsocketHandler(board *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("websocket upgrade failed: %s", err), http.StatusInternalServerError)
			return
		}
		defer c.Close(websocket.StatusInternalError, "server going away")

		id, ch := board.Events().Subscribe()
		defer board.Events().Unsubscribe(id)

		for snapshot := range ch {
			js, err := json.Marshal(snapshot)
			if err != nil {
				log.Err(err).Msg("Failed to marshal pin snapshot for websocket")
				continue
			}

			if err := writeTimeout(r.Context(), 5*time.Second, c, js); err != nil {
				break
			}
		}

		c.Close(websocket.StatusNormalClosure, "")
	}
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.Write(ctx, websocket.MessageText, msg)
}
