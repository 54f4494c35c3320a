package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	authdomain "vida-backend/internal/auth/domain"
	authrepo "vida-backend/internal/auth/repository"
	chatdomain "vida-backend/internal/chat/domain"
	chatrepo "vida-backend/internal/chat/repository"
	"vida-backend/pkg/fcm"
	"vida-backend/pkg/mailer"
)

// Notification is one outbound message fanned out across channels
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushClient multicasts to device tokens, reporting invalid ones
type PushClient interface {
	Multicast(ctx context.Context, tokens []string, data fcm.NotificationData) (*fcm.MulticastResult, error)
}

// EmailSender delivers a rendered notification email
type EmailSender interface {
	Send(to, subject string, data mailer.TemplateData) error
}

// SMSSender delivers plain text to a phone number
type SMSSender interface {
	Send(to, body string) (string, error)
}

// WhatsAppSender delivers plain text through the bridge session
type WhatsAppSender interface {
	IsLive() bool
	Send(ctx context.Context, phone, text string) error
}

// RealtimePublisher pushes events to connected clients
type RealtimePublisher interface {
	SendToUser(userID, event string, payload interface{})
}

// Outcome reports each channel's result. Success is defined by the
// system-of-record write (the in-app chat message); everything else is
// best effort.
type Outcome struct {
	PushSuccess int
	PushFailure int

	PushErr     error
	EmailErr    error
	SMSErr      error
	WhatsAppErr error
	InAppErr    error
}

// Success reports whether the system-of-record write succeeded
func (o Outcome) Success() bool {
	return o.InAppErr == nil
}

// Dispatcher fans a notification out across all configured channels
// with per-channel failure isolation.
type Dispatcher struct {
	tokenRepo authrepo.PushTokenRepository
	convRepo  chatrepo.ConversationRepository
	msgRepo   chatrepo.MessageRepository

	push     PushClient
	email    EmailSender
	sms      SMSSender
	whatsapp WhatsAppSender
	realtime RealtimePublisher
}

// NewDispatcher creates a new Dispatcher. Channel senders may be nil;
// nil channels are skipped.
func NewDispatcher(
	tokenRepo authrepo.PushTokenRepository,
	convRepo chatrepo.ConversationRepository,
	msgRepo chatrepo.MessageRepository,
	push PushClient,
	email EmailSender,
	sms SMSSender,
	whatsapp WhatsAppSender,
	realtime RealtimePublisher,
) *Dispatcher {
	return &Dispatcher{
		tokenRepo: tokenRepo,
		convRepo:  convRepo,
		msgRepo:   msgRepo,
		push:      push,
		email:     email,
		sms:       sms,
		whatsapp:  whatsapp,
		realtime:  realtime,
	}
}

// Dispatch attempts every channel independently. A failure in one
// channel never blocks the others and nothing is rolled back.
func (d *Dispatcher) Dispatch(ctx context.Context, user *authdomain.User, n Notification) Outcome {
	var outcome Outcome

	outcome.PushSuccess, outcome.PushFailure, outcome.PushErr = d.dispatchPush(ctx, user, n)
	if outcome.PushErr != nil {
		log.Printf("[Dispatcher] Push failed for user %s: %v", user.ID, outcome.PushErr)
	}

	outcome.EmailErr = d.dispatchEmail(user, n)
	if outcome.EmailErr != nil {
		log.Printf("[Dispatcher] Email failed for user %s: %v", user.ID, outcome.EmailErr)
	}

	outcome.SMSErr = d.dispatchSMS(user, n)
	if outcome.SMSErr != nil {
		log.Printf("[Dispatcher] SMS failed for user %s: %v", user.ID, outcome.SMSErr)
	}

	outcome.WhatsAppErr = d.dispatchWhatsApp(ctx, user, n)
	if outcome.WhatsAppErr != nil {
		log.Printf("[Dispatcher] WhatsApp failed for user %s: %v", user.ID, outcome.WhatsAppErr)
	}

	outcome.InAppErr = d.dispatchInApp(user, n)
	if outcome.InAppErr != nil {
		log.Printf("[Dispatcher] In-app delivery failed for user %s: %v", user.ID, outcome.InAppErr)
	}

	return outcome
}

// dispatchPush multicasts to every registered device and deletes
// tokens the provider reports as invalid.
func (d *Dispatcher) dispatchPush(ctx context.Context, user *authdomain.User, n Notification) (int, int, error) {
	if d.push == nil || !user.PushNotification {
		return 0, 0, nil
	}

	tokens, err := d.tokenRepo.GetTokensByUserID(user.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return 0, 0, nil
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	result, err := d.push.Multicast(ctx, tokenStrings, fcm.NotificationData{
		Title: n.Title,
		Body:  n.Body,
		Data:  n.Data,
	})
	if err != nil {
		return 0, 0, err
	}

	// Token hygiene: drop rows the provider says are gone
	for _, token := range result.InvalidTokens {
		if err := d.tokenRepo.DeleteToken(token); err != nil {
			log.Printf("[Dispatcher] Failed to delete invalid token: %v", err)
		}
	}

	return result.SuccessCount, result.FailureCount, nil
}

func (d *Dispatcher) dispatchEmail(user *authdomain.User, n Notification) error {
	if d.email == nil || user.Email == "" {
		return nil
	}
	return d.email.Send(user.Email, n.Title, mailer.TemplateData{
		Username:    user.Name,
		Title:       n.Title,
		Description: n.Body,
	})
}

func (d *Dispatcher) dispatchSMS(user *authdomain.User, n Notification) error {
	if d.sms == nil || user.PhoneNumber == "" {
		return nil
	}
	_, err := d.sms.Send("+"+user.PhoneNumber, fmt.Sprintf("%s: %s", n.Title, n.Body))
	return err
}

func (d *Dispatcher) dispatchWhatsApp(ctx context.Context, user *authdomain.User, n Notification) error {
	if d.whatsapp == nil || user.PhoneNumber == "" || !d.whatsapp.IsLive() {
		return nil
	}
	return d.whatsapp.Send(ctx, user.PhoneNumber, fmt.Sprintf("*%s*\n%s", n.Title, n.Body))
}

// dispatchInApp writes the BOT message into the canonical conversation
// and publishes the realtime event so connected clients update live.
func (d *Dispatcher) dispatchInApp(user *authdomain.User, n Notification) error {
	conv, err := d.convRepo.FindCanonicalByUser(user.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve conversation: %w", err)
	}
	if conv == nil {
		conv = &chatdomain.Conversation{
			UserID: user.ID,
			Title:  "Conversa principal",
		}
		if err := d.convRepo.Create(conv); err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
	}

	msg := &chatdomain.ChatMessage{
		ConversationID: conv.ID,
		Sender:         chatdomain.SenderBot,
		Content:        n.Body,
		CreatedAt:      time.Now(),
	}
	if err := d.msgRepo.Create(msg); err != nil {
		return fmt.Errorf("failed to persist notification message: %w", err)
	}

	if d.realtime != nil {
		d.realtime.SendToUser(user.ID, "notification", map[string]interface{}{
			"id":        msg.ID,
			"message":   msg.Content,
			"sender":    msg.Sender,
			"timestamp": msg.CreatedAt,
		})
	}
	return nil
}
