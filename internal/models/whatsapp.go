package models

// WhatsApp Business webhook payload types. Only the fields the webhook handler
// consumes are modeled; Meta sends considerably more.

// WhatsAppWebhookPayload is the top-level body POSTed by the WhatsApp Business API.
type WhatsAppWebhookPayload struct {
	Object string          `json:"object"`
	Entry  []WhatsAppEntry `json:"entry"`
}

// WhatsAppEntry is one account-level entry in a webhook delivery.
type WhatsAppEntry struct {
	ID      string           `json:"id"`
	Changes []WhatsAppChange `json:"changes"`
}

// WhatsAppChange wraps the changed value for a subscribed field.
type WhatsAppChange struct {
	Field string              `json:"field"`
	Value WhatsAppChangeValue `json:"value"`
}

// WhatsAppChangeValue carries the inbound messages, if any.
type WhatsAppChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Messages         []WhatsAppMessage `json:"messages,omitempty"`
	Statuses         []any             `json:"statuses,omitempty"`
}

// Inbound WhatsApp message types handled by the webhook.
const (
	WhatsAppMessageTypeText     = "text"
	WhatsAppMessageTypeImage    = "image"
	WhatsAppMessageTypeVideo    = "video"
	WhatsAppMessageTypeAudio    = "audio"
	WhatsAppMessageTypeDocument = "document"
)

// WhatsAppMessage is one inbound user message.
type WhatsAppMessage struct {
	From      string         `json:"from"` // Sender phone number
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Type      string         `json:"type"`
	Text      *WhatsAppText  `json:"text,omitempty"`
	Image     *WhatsAppMedia `json:"image,omitempty"`
	Video     *WhatsAppMedia `json:"video,omitempty"`
	Audio     *WhatsAppMedia `json:"audio,omitempty"`
	Document  *WhatsAppMedia `json:"document,omitempty"`
}

// WhatsAppText is the body of a text message.
type WhatsAppText struct {
	Body string `json:"body"`
}

// WhatsAppMedia is a media reference inside an image/video/audio/document message.
type WhatsAppMedia struct {
	ID       string `json:"id"`
	Caption  string `json:"caption,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
}
