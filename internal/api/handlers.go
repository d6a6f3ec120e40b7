package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"livedocs/internal/models"
	"livedocs/internal/session"
	"livedocs/internal/utils"
)

const saveTimeout = 10 * time.Second

type Handlers struct {
	log *utils.Logger
	hub *session.Hub
}

func NewHandlers(log *utils.Logger, hub *session.Hub) *Handlers {
	return &Handlers{log: log, hub: hub}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// GetParticipants reports who is currently connected to a document.
func (h *Handlers) GetParticipants(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	participants, ok := h.hub.ActiveParticipants(docID)
	if !ok {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}
	writeJSON(w, participants)
}

/*** Document WebSocket: join handshake + edit/cursor/save relay ***/

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (h *Handlers) DocumentWS(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	identity := h.identityFromRequest(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	client := session.NewClient(connID, conn)

	// First frame must be a join. It may carry an identity descriptor when
	// the transport did not authenticate; with neither, the hub synthesizes
	// a guest.
	var init models.InboundFrame
	if err := conn.ReadJSON(&init); err != nil {
		return
	}
	if init.Type != "join" {
		client.Send(errFrame("expected join"))
		return
	}
	if identity == nil && len(init.Data) > 0 {
		var req models.JoinRequest
		if err := json.Unmarshal(init.Data, &req); err == nil {
			identity = req.Identity
		}
	}

	state, err := h.hub.Join(r.Context(), docID, client, identity)
	if err != nil {
		client.Send(errFrame("failed to load document"))
		return
	}
	client.Send(models.WSFrame{Type: "joined", Data: state})

	// The request context dies with the socket; teardown and the final
	// owner save need their own.
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		h.hub.Leave(ctx, docID, connID)
	}()

	for {
		var frame models.InboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case "edit":
			if err := h.hub.RelayEdit(docID, connID, frame.Data); err != nil {
				client.Send(errFrame("failed to relay edit"))
			}

		case "cursor":
			if err := h.hub.RelayCursor(docID, connID, frame.Data); err != nil {
				client.Send(errFrame("failed to relay cursor"))
			}

		case "save":
			ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			if err := h.hub.Save(ctx, docID, connID, frame.Data); err != nil {
				client.Send(errFrame("failed to save document"))
			}
			cancel()

		default:
			client.Send(errFrame("unknown_type"))
		}
	}
}

// identityFromRequest resolves the optional identity token from the query
// string or Authorization header. An invalid token degrades to a guest
// join rather than rejecting the connection.
func (h *Handlers) identityFromRequest(r *http.Request) *models.Identity {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); header != "" {
			if value, err := utils.ExtractTokenFromHeader(header); err == nil {
				token = value
			}
		}
	}
	if token == "" {
		return nil
	}
	claims, err := utils.ValidateIdentityToken(token)
	if err != nil {
		h.log.Warn("invalid identity token, joining as guest", "error", err)
		return nil
	}
	return &models.Identity{
		ID:          claims.UserID,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		IsAnonymous: claims.IsAnonymous,
		ProviderID:  claims.ProviderID,
	}
}

func errFrame(msg string) models.WSFrame {
	return models.WSFrame{Type: "operation-error", Data: msg}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
