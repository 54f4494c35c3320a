package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "vida-backend/internal/auth/domain"
	chatdomain "vida-backend/internal/chat/domain"
	"vida-backend/pkg/fcm"
	"vida-backend/pkg/mailer"
)

// Fakes

type fakeTokenRepo struct {
	tokens  []authdomain.PushToken
	deleted []string
}

func (r *fakeTokenRepo) SaveToken(userID, token, platform string) error { return nil }
func (r *fakeTokenRepo) GetTokensByUserID(userID string) ([]authdomain.PushToken, error) {
	return r.tokens, nil
}
func (r *fakeTokenRepo) DeleteToken(token string) error {
	r.deleted = append(r.deleted, token)
	for i, t := range r.tokens {
		if t.Token == token {
			r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
			break
		}
	}
	return nil
}
func (r *fakeTokenRepo) DeleteTokensByUserID(userID string) error { return nil }

type fakeConvRepo struct {
	conversations []*chatdomain.Conversation
}

func (r *fakeConvRepo) Create(conv *chatdomain.Conversation) error {
	conv.ID = "conv-1"
	r.conversations = append(r.conversations, conv)
	return nil
}
func (r *fakeConvRepo) FindByID(id string) (*chatdomain.Conversation, error) { return nil, nil }
func (r *fakeConvRepo) FindCanonicalByUser(userID string) (*chatdomain.Conversation, error) {
	for _, c := range r.conversations {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, nil
}

type fakeMsgRepo struct {
	messages  []*chatdomain.ChatMessage
	createErr error
}

func (r *fakeMsgRepo) Create(msg *chatdomain.ChatMessage) error {
	if r.createErr != nil {
		return r.createErr
	}
	msg.ID = "msg-1"
	r.messages = append(r.messages, msg)
	return nil
}
func (r *fakeMsgRepo) FindRecentByConversation(conversationID string, limit int) ([]chatdomain.ChatMessage, error) {
	return nil, nil
}
func (r *fakeMsgRepo) CountByUserSince(userID string, since time.Time) (int64, error) {
	return 0, nil
}

type fakePush struct {
	result *fcm.MulticastResult
	err    error
	sent   [][]string
}

func (p *fakePush) Multicast(ctx context.Context, tokens []string, data fcm.NotificationData) (*fcm.MulticastResult, error) {
	p.sent = append(p.sent, tokens)
	return p.result, p.err
}

type fakeEmail struct {
	sent []string
	err  error
}

func (e *fakeEmail) Send(to, subject string, data mailer.TemplateData) error {
	e.sent = append(e.sent, to)
	return e.err
}

type fakeSMS struct {
	sent []string
	err  error
}

func (s *fakeSMS) Send(to, body string) (string, error) {
	s.sent = append(s.sent, to)
	return "SM123", s.err
}

type fakeWhatsApp struct {
	live bool
	sent []string
	err  error
}

func (w *fakeWhatsApp) IsLive() bool { return w.live }
func (w *fakeWhatsApp) Send(ctx context.Context, phone, text string) error {
	w.sent = append(w.sent, phone)
	return w.err
}

type fakeRealtime struct {
	events []string
}

func (r *fakeRealtime) SendToUser(userID, event string, payload interface{}) {
	r.events = append(r.events, event)
}

type dispatcherFixture struct {
	d        *Dispatcher
	tokens   *fakeTokenRepo
	convs    *fakeConvRepo
	msgs     *fakeMsgRepo
	push     *fakePush
	email    *fakeEmail
	sms      *fakeSMS
	whatsapp *fakeWhatsApp
	realtime *fakeRealtime
	user     *authdomain.User
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		tokens:   &fakeTokenRepo{},
		convs:    &fakeConvRepo{},
		msgs:     &fakeMsgRepo{},
		push:     &fakePush{result: &fcm.MulticastResult{}},
		email:    &fakeEmail{},
		sms:      &fakeSMS{},
		whatsapp: &fakeWhatsApp{live: true},
		realtime: &fakeRealtime{},
		user: &authdomain.User{
			ID:               "user-1",
			Name:             "Ana",
			Email:            "ana@example.com",
			PhoneNumber:      "5511999999999",
			PushNotification: true,
			IsNotification:   true,
		},
	}
	f.d = NewDispatcher(f.tokens, f.convs, f.msgs, f.push, f.email, f.sms, f.whatsapp, f.realtime)
	return f
}

func sampleNotification() Notification {
	return Notification{
		Title: "⏰ Lembrete",
		Body:  "pagar o aluguel",
		Data:  map[string]string{"type": "reminder_due"},
	}
}

func TestDispatchAllChannels(t *testing.T) {
	f := newDispatcherFixture()
	f.tokens.tokens = []authdomain.PushToken{{Token: "tok-1"}, {Token: "tok-2"}}
	f.push.result = &fcm.MulticastResult{SuccessCount: 2}

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	assert.True(t, outcome.Success())
	assert.Equal(t, 2, outcome.PushSuccess)
	require.Len(t, f.push.sent, 1)
	assert.Equal(t, []string{"tok-1", "tok-2"}, f.push.sent[0])
	assert.Equal(t, []string{"ana@example.com"}, f.email.sent)
	assert.Equal(t, []string{"+5511999999999"}, f.sms.sent)
	assert.Equal(t, []string{"5511999999999"}, f.whatsapp.sent)
	assert.Equal(t, []string{"notification"}, f.realtime.events)

	// The in-app message is the system of record
	require.Len(t, f.msgs.messages, 1)
	assert.Equal(t, chatdomain.SenderBot, f.msgs.messages[0].Sender)
	assert.Equal(t, "pagar o aluguel", f.msgs.messages[0].Content)
}

func TestDispatchInvalidTokenDeleted(t *testing.T) {
	f := newDispatcherFixture()
	f.tokens.tokens = []authdomain.PushToken{{Token: "tok-good"}, {Token: "tok-stale"}}
	f.push.result = &fcm.MulticastResult{
		SuccessCount:  1,
		FailureCount:  1,
		InvalidTokens: []string{"tok-stale"},
	}

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	assert.True(t, outcome.Success())
	assert.Equal(t, []string{"tok-stale"}, f.tokens.deleted)
	require.Len(t, f.tokens.tokens, 1)
	assert.Equal(t, "tok-good", f.tokens.tokens[0].Token)
}

func TestDispatchChannelFailuresIsolated(t *testing.T) {
	f := newDispatcherFixture()
	f.tokens.tokens = []authdomain.PushToken{{Token: "tok-1"}}
	f.push.err = errors.New("fcm unavailable")
	f.email.err = errors.New("smtp timeout")
	f.sms.err = errors.New("twilio 500")
	f.whatsapp.err = errors.New("bridge closed")

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	// Every channel was attempted despite the failures
	assert.Len(t, f.push.sent, 1)
	assert.Len(t, f.email.sent, 1)
	assert.Len(t, f.sms.sent, 1)
	assert.Len(t, f.whatsapp.sent, 1)
	assert.Len(t, f.msgs.messages, 1)

	assert.Error(t, outcome.PushErr)
	assert.Error(t, outcome.EmailErr)
	assert.Error(t, outcome.SMSErr)
	assert.Error(t, outcome.WhatsAppErr)
	assert.True(t, outcome.Success())
}

func TestDispatchFailsOnlyWhenRecordWriteFails(t *testing.T) {
	f := newDispatcherFixture()
	f.msgs.createErr = errors.New("db down")

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	assert.False(t, outcome.Success())
	assert.Error(t, outcome.InAppErr)
}

func TestDispatchSkipsPushWhenDisabledByUser(t *testing.T) {
	f := newDispatcherFixture()
	f.user.PushNotification = false
	f.tokens.tokens = []authdomain.PushToken{{Token: "tok-1"}}

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	assert.Empty(t, f.push.sent)
	assert.NoError(t, outcome.PushErr)
	assert.True(t, outcome.Success())
}

func TestDispatchSkipsChannelsWithoutAddress(t *testing.T) {
	f := newDispatcherFixture()
	f.user.Email = ""
	f.user.PhoneNumber = ""

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	assert.Empty(t, f.email.sent)
	assert.Empty(t, f.sms.sent)
	assert.Empty(t, f.whatsapp.sent)
	assert.True(t, outcome.Success())
}

func TestDispatchSkipsWhatsAppWhenSessionDown(t *testing.T) {
	f := newDispatcherFixture()
	f.whatsapp.live = false

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	assert.Empty(t, f.whatsapp.sent)
	assert.NoError(t, outcome.WhatsAppErr)
}

func TestDispatchNilChannelsSkipped(t *testing.T) {
	f := newDispatcherFixture()
	d := NewDispatcher(f.tokens, f.convs, f.msgs, nil, nil, nil, nil, nil)

	outcome := d.Dispatch(context.Background(), f.user, sampleNotification())

	// Only the in-app write runs
	assert.True(t, outcome.Success())
	assert.Len(t, f.msgs.messages, 1)
}

func TestDispatchCreatesCanonicalConversation(t *testing.T) {
	f := newDispatcherFixture()

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	require.True(t, outcome.Success())
	require.Len(t, f.convs.conversations, 1)
	assert.Equal(t, "Conversa principal", f.convs.conversations[0].Title)
	assert.Equal(t, "conv-1", f.msgs.messages[0].ConversationID)
}

func TestDispatchReusesExistingConversation(t *testing.T) {
	f := newDispatcherFixture()
	f.convs.conversations = append(f.convs.conversations, &chatdomain.Conversation{
		ID:     "conv-existing",
		UserID: "user-1",
	})

	outcome := f.d.Dispatch(context.Background(), f.user, sampleNotification())

	require.True(t, outcome.Success())
	assert.Len(t, f.convs.conversations, 1)
	assert.Equal(t, "conv-existing", f.msgs.messages[0].ConversationID)
}
