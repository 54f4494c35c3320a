package whatsapp

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

func init() {
	// The sqlstore opens its own database/sql connection with the
	// "postgres" driver name; importing lib/pq registers it. The array
	// wrapper is required for multi-device session rows.
	sqlstore.PostgresArrayWrapper = func(v interface{}) interface {
		driver.Valuer
		sql.Scanner
	} {
		return pq.Array(v)
	}
}

// InboundMessage is a normalized inbound WhatsApp turn
type InboundMessage struct {
	From string // sender phone, digits only
	Text string
}

// Bridge keeps a persistent WhatsApp session. The session reconnects
// on unexpected disconnects and stops permanently after an explicit
// logout signal from the provider.
type Bridge struct {
	client    *whatsmeow.Client
	onMessage func(InboundMessage)
	loggedOut atomic.Bool
}

// NewBridge opens the device store on the application database and
// builds the session client. Device pairing (QR) is done out of band;
// the bridge resumes the stored session.
func NewBridge(databaseURL string) (*Bridge, error) {
	container, err := sqlstore.New("postgres", databaseURL, waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("failed to open whatsapp device store: %w", err)
	}

	device, err := container.GetFirstDevice()
	if err != nil {
		return nil, fmt.Errorf("failed to load whatsapp device: %w", err)
	}

	b := &Bridge{
		client: whatsmeow.NewClient(device, waLog.Stdout("WhatsApp", "WARN", true)),
	}
	b.client.AddEventHandler(b.handleEvent)
	return b, nil
}

// OnMessage registers the inbound message callback. Must be called
// before Connect.
func (b *Bridge) OnMessage(fn func(InboundMessage)) {
	b.onMessage = fn
}

// Connect starts the session. Returns an error when no paired device
// is stored yet.
func (b *Bridge) Connect() error {
	if b.client.Store.ID == nil {
		return fmt.Errorf("no whatsapp session stored, pair the device first")
	}
	return b.client.Connect()
}

// IsLive reports whether the session is connected and usable
func (b *Bridge) IsLive() bool {
	return b.client != nil && b.client.IsConnected() && !b.loggedOut.Load()
}

// Send delivers plain text to a phone number (digits only)
func (b *Bridge) Send(ctx context.Context, phone, text string) error {
	if !b.IsLive() {
		return fmt.Errorf("whatsapp session is not live")
	}

	jid := types.NewJID(phone, types.DefaultUserServer)
	_, err := b.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	return nil
}

// Disconnect tears the session down without logging out
func (b *Bridge) Disconnect() {
	if b.client != nil {
		b.client.Disconnect()
	}
}

func (b *Bridge) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		log.Println("[WhatsApp] Session connected")

	case *events.Message:
		if v.Info.IsFromMe || b.onMessage == nil {
			return
		}
		text := extractText(v.Message)
		if text == "" {
			return
		}
		b.onMessage(InboundMessage{
			From: v.Info.Sender.User,
			Text: text,
		})

	case *events.LoggedOut:
		// Explicit logout: never reconnect, the stored session is dead
		log.Println("[WhatsApp] Session logged out, bridge disabled")
		b.loggedOut.Store(true)

	case *events.Disconnected:
		if b.loggedOut.Load() {
			return
		}
		log.Println("[WhatsApp] Session dropped, reconnecting")
		go b.reconnect()
	}
}

// reconnect retries without bound until the session is back or an
// explicit logout arrives.
func (b *Bridge) reconnect() {
	for !b.loggedOut.Load() {
		if b.client.IsConnected() {
			return
		}
		if err := b.client.Connect(); err != nil {
			log.Printf("[WhatsApp] Reconnect failed: %v", err)
			time.Sleep(10 * time.Second)
			continue
		}
		return
	}
}

func extractText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	if ext := msg.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	return ""
}
