package delivery

import (
	"context"
	"log"
	"net/http"

	"vida-backend/internal/chat/usecase"
	"vida-backend/internal/inbound"
	"vida-backend/pkg/whatsapp"

	"github.com/gin-gonic/gin"
)

// MessageProcessor is the pipeline contract the adapters forward into
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, userID, text string, channel usecase.Channel) (string, error)
}

// SMSReplier sends the pipeline reply back out the SMS channel
type SMSReplier interface {
	Send(to, body string) (string, error)
}

// WhatsAppReplier sends the pipeline reply back out the WhatsApp channel
type WhatsAppReplier interface {
	IsLive() bool
	Send(ctx context.Context, phone, text string) error
}

// WebhookHandler normalizes inbound channel payloads into (user, text)
// and relays replies back out the originating channel.
type WebhookHandler struct {
	resolver *inbound.Resolver
	pipeline MessageProcessor
	sms      SMSReplier
	whatsapp WhatsAppReplier
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(resolver *inbound.Resolver, pipeline MessageProcessor, sms SMSReplier, wa WhatsAppReplier) *WebhookHandler {
	return &WebhookHandler{
		resolver: resolver,
		pipeline: pipeline,
		sms:      sms,
		whatsapp: wa,
	}
}

// HandleSMS accepts carrier webhooks (form-encoded From/Body)
// POST /webhooks/sms
func (h *WebhookHandler) HandleSMS(c *gin.Context) {
	from := c.PostForm("From")
	body := c.PostForm("Body")
	if from == "" || body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "From and Body are required"})
		return
	}

	user, err := h.resolver.ResolveByPhone(from)
	if err != nil {
		log.Printf("[Inbound] SMS sender lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	if user == nil {
		// Unknown sender: drop silently, no bounce reply
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "processed"})
		return
	}

	reply, err := h.pipeline.ProcessMessage(c.Request.Context(), user.ID, body, usecase.ChannelSMS)
	if err != nil {
		log.Printf("[Inbound] Pipeline failed for SMS from user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}

	if h.sms != nil && reply != "" {
		if _, err := h.sms.Send(from, reply); err != nil {
			log.Printf("[Inbound] Failed to relay SMS reply to user %s: %v", user.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "processed"})
}

// whatsAppWebhookRequest is the JSON payload of bridge-relay deployments
type whatsAppWebhookRequest struct {
	From string `json:"from" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// HandleWhatsApp accepts bridge webhooks (JSON from/text)
// POST /webhooks/whatsapp
func (h *WebhookHandler) HandleWhatsApp(c *gin.Context) {
	var req whatsAppWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "from and text are required"})
		return
	}

	if err := h.processWhatsApp(c.Request.Context(), req.From, req.Text); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "processed"})
}

// ListenBridge wires the in-process bridge session into the pipeline.
// Each inbound message is handled on its own goroutine so a slow model
// call never blocks the bridge's event loop.
func (h *WebhookHandler) ListenBridge(bridge *whatsapp.Bridge) {
	bridge.OnMessage(func(m whatsapp.InboundMessage) {
		go func() {
			if err := h.processWhatsApp(context.Background(), m.From, m.Text); err != nil {
				log.Printf("[Inbound] WhatsApp processing failed: %v", err)
			}
		}()
	})
}

func (h *WebhookHandler) processWhatsApp(ctx context.Context, from, text string) error {
	user, err := h.resolver.ResolveByPhone(from)
	if err != nil {
		log.Printf("[Inbound] WhatsApp sender lookup failed: %v", err)
		return err
	}
	if user == nil {
		// Unknown sender: drop silently
		return nil
	}

	reply, err := h.pipeline.ProcessMessage(ctx, user.ID, text, usecase.ChannelWhatsApp)
	if err != nil {
		log.Printf("[Inbound] Pipeline failed for WhatsApp from user %s: %v", user.ID, err)
		return err
	}

	if h.whatsapp != nil && reply != "" && h.whatsapp.IsLive() {
		if err := h.whatsapp.Send(ctx, user.PhoneNumber, reply); err != nil {
			log.Printf("[Inbound] Failed to relay WhatsApp reply to user %s: %v", user.ID, err)
		}
	}
	return nil
}
