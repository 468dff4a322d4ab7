package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"recruitassist-backend/internal/agent"
	"recruitassist-backend/internal/models"
	"recruitassist-backend/pkg/httputil"
)

// turnResolver resolves one inbound user message to a reply. Implemented by
// *agent.Agent.
type turnResolver interface {
	Resolve(ctx context.Context, req agent.TurnRequest) string
}

// messageGateway delivers outbound text and resolves inbound media
// references. Implemented by *whatsapp.Client.
type messageGateway interface {
	SendText(ctx context.Context, to, body string) error
	MediaURL(ctx context.Context, mediaID string) (string, error)
}

// WhatsAppWebhookHandler handles the Meta webhook for inbound WhatsApp
// messages: GET for subscription verification, POST for message events.
type WhatsAppWebhookHandler struct {
	agent       turnResolver
	sender      messageGateway
	verifyToken string
}

func NewWhatsAppWebhookHandler(a turnResolver, sender messageGateway, verifyToken string) *WhatsAppWebhookHandler {
	return &WhatsAppWebhookHandler{
		agent:       a,
		sender:      sender,
		verifyToken: verifyToken,
	}
}

// HandleVerify handles GET /api/webhook/whatsapp, Meta's subscription
// handshake. On a matching token the hub.challenge value is echoed back as
// plain text.
func (h *WhatsAppWebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		log.Printf("[WhatsAppWebhook] webhook verified")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	log.Printf("[WhatsAppWebhook] verification failed: mode=%q", mode)
	httputil.RespondError(w, http.StatusForbidden, "Verification failed")
}

// HandleEvent handles POST /api/webhook/whatsapp. Meta retries deliveries
// that do not get a 2xx, so every parseable request is acknowledged with 200
// regardless of what processing does; failures surface to the user as the
// agent's fallback reply, not as webhook errors.
func (h *WhatsAppWebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var payload models.WhatsAppWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("[WhatsAppWebhook] undecodable payload: %v", err)
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	defer r.Body.Close()

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				h.processMessage(r.Context(), msg)
			}
		}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (h *WhatsAppWebhookHandler) processMessage(ctx context.Context, msg models.WhatsAppMessage) {
	text, mimeType, mediaID := ExtractContent(msg)
	if text == "" {
		log.Printf("[WhatsAppWebhook] ignoring %s message %s with no usable content", msg.Type, msg.ID)
		return
	}
	log.Printf("[WhatsAppWebhook] message %s from %s (%s)", msg.ID, msg.From, msg.Type)

	// Attachments arrive as media IDs; resolve them to a download URL so the
	// reference is preserved alongside the turn. Resolution failure only
	// drops the reference, never the message.
	var mediaURL string
	if mediaID != "" {
		url, err := h.sender.MediaURL(ctx, mediaID)
		if err != nil {
			log.Printf("ERROR [WhatsAppWebhook] failed to resolve media %s: %v", mediaID, err)
		} else {
			mediaURL = url
		}
	}

	reply := h.agent.Resolve(ctx, agent.TurnRequest{
		UserID:   msg.From,
		Text:     text,
		MediaURL: mediaURL,
		MimeType: mimeType,
		Channel:  agent.ChannelWhatsApp,
	})

	if err := h.sender.SendText(ctx, msg.From, reply); err != nil {
		log.Printf("ERROR [WhatsAppWebhook] failed to send reply to %s: %v", msg.From, err)
	}
}

// ExtractContent turns an inbound message into the text handed to the agent,
// plus the attachment mime type and media ID when media is involved. Media
// bytes are never downloaded here; captions stand in for images and
// documents, and audio always maps to a fixed placeholder since there is no
// caption to use.
func ExtractContent(msg models.WhatsAppMessage) (text, mimeType, mediaID string) {
	switch msg.Type {
	case models.WhatsAppMessageTypeText:
		if msg.Text == nil {
			return "", "", ""
		}
		return msg.Text.Body, "", ""
	case models.WhatsAppMessageTypeImage:
		if msg.Image == nil {
			return "", "", ""
		}
		if msg.Image.Caption != "" {
			return msg.Image.Caption, msg.Image.MimeType, msg.Image.ID
		}
		return "Image", msg.Image.MimeType, msg.Image.ID
	case models.WhatsAppMessageTypeVideo:
		if msg.Video == nil {
			return "", "", ""
		}
		if msg.Video.Caption != "" {
			return msg.Video.Caption, msg.Video.MimeType, msg.Video.ID
		}
		return "Video", msg.Video.MimeType, msg.Video.ID
	case models.WhatsAppMessageTypeAudio:
		if msg.Audio == nil {
			return "", "", ""
		}
		return "Audio message", msg.Audio.MimeType, msg.Audio.ID
	case models.WhatsAppMessageTypeDocument:
		if msg.Document == nil {
			return "", "", ""
		}
		if msg.Document.Caption != "" {
			return msg.Document.Caption, msg.Document.MimeType, msg.Document.ID
		}
		return "Document", msg.Document.MimeType, msg.Document.ID
	default:
		return "", "", ""
	}
}
