package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

/////////////////////
// Response helpers

func RespondInternalServiceError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(err.Error()))
}

func RespondNotFoundError(w http.ResponseWriter, body string) {
	w.WriteHeader(http.StatusNotFound)
	if body == "" {
		body = "Not found"
	}
	RespondText(w, body)
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	RespondText(w, message)
}

func RespondText(w http.ResponseWriter, body string) {
	w.Write([]byte(body))
}

func RespondJSON(w http.ResponseWriter, body any) {
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		RespondInternalServiceError(w, err)
	}
}

//////////////////
// Status page

type StatusPageData struct {
	Pins    []PinStatus
	Message string
}

// renderStatusPage re-reads every pin from hardware and renders the listing,
// optionally with a status message from the action just performed.
func renderStatusPage(w http.ResponseWriter, config *Config, board *Board, message string) {
	if err := board.Refresh(); err != nil {
		RespondInternalServiceError(w, err)
		return
	}

	tmpl, err := GetIndexTemplate(config)
	if err != nil {
		RespondInternalServiceError(w, err)
		return
	}

	data := StatusPageData{
		Pins:    board.Statuses(),
		Message: message,
	}

	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render status page")
	}
}

// actionMessage builds the human-readable status line shown after an action.
func actionMessage(name string, action Action) string {
	switch action {
	case ActionOn:
		return fmt.Sprintf("Turned %s on.", name)
	case ActionOff:
		return fmt.Sprintf("Turned %s off.", name)
	default:
		return fmt.Sprintf("Toggled %s.", name)
	}
}

// NewRouter wires up every route. Split out from StartServer so tests can
// drive the handlers through httptest without binding a socket.
func NewRouter(config *Config, buildInfo BuildInfo, board *Board) chi.Router {
	r := chi.NewRouter()
	r.Use(LoggerMiddleware(&log.Logger))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		renderStatusPage(w, config, board, "")
	})

	// Best-effort diagnostic read of an arbitrary pin. Every failure mode
	// collapses into one generic message on purpose.
	r.Get("/readPin/{pin}", func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "pin")

		message := fmt.Sprintf("There was an error reading pin %s.", raw)
		if pin, err := strconv.Atoi(raw); err == nil {
			if high, err := board.ReadLevel(pin); err == nil {
				level := "low"
				if high {
					level = "high"
				}
				message = fmt.Sprintf("Pin %d is %s.", pin, level)
			}
		}

		renderStatusPage(w, config, board, message)
	})

	r.Get("/{pin}/{action}", func(w http.ResponseWriter, r *http.Request) {
		pin, err := strconv.Atoi(chi.URLParam(r, "pin"))
		if err != nil {
			RespondBadRequest(w, "pin must be a number")
			return
		}

		action, err := ParseAction(chi.URLParam(r, "action"))
		if err != nil {
			RespondBadRequest(w, err.Error())
			return
		}

		status, err := board.Apply(pin, action)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				RespondNotFoundError(w, err.Error())
				return
			}
			RespondInternalServiceError(w, err)
			return
		}

		message := actionMessage(status.Name, action)
		board.LogActivity(message)

		renderStatusPage(w, config, board, message)
	})

	// JSON surface for programmatic clients

	r.Get("/api/pins", func(w http.ResponseWriter, r *http.Request) {
		if err := board.Refresh(); err != nil {
			RespondInternalServiceError(w, err)
			return
		}
		RespondJSON(w, board.Statuses())
	})

	r.Post("/api/pins/{pin}/{action}", func(w http.ResponseWriter, r *http.Request) {
		pin, err := strconv.Atoi(chi.URLParam(r, "pin"))
		if err != nil {
			RespondBadRequest(w, "pin must be a number")
			return
		}

		action, err := ParseAction(chi.URLParam(r, "action"))
		if err != nil {
			RespondBadRequest(w, err.Error())
			return
		}

		status, err := board.Apply(pin, action)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				RespondNotFoundError(w, err.Error())
				return
			}
			RespondInternalServiceError(w, err)
			return
		}

		message := actionMessage(status.Name, action)
		board.LogActivity(message)

		RespondJSON(w, struct {
			PinStatus
			Message string `json:"message"`
		}{status, message})
	})

	r.Get("/api/activity", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, board.Activity())
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, buildInfo)
	})

	r.Get("/ws", createWebsocketHandler(board))

	return r
}

func StartServer(config *Config, buildInfo BuildInfo, board *Board) error {
	r := NewRouter(config, buildInfo, board)

	address := config.Address()
	log.Info().Str("listen", address).Msg("launching server")
	return http.ListenAndServe(address, r)
}
