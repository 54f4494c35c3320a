package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "vida-backend/internal/auth/domain"
	"vida-backend/internal/chat/usecase"
	"vida-backend/internal/inbound"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Fakes

type fakeUserRepo struct {
	byPhone map[string]*authdomain.User
}

func (r *fakeUserRepo) Create(u *authdomain.User) error                    { return nil }
func (r *fakeUserRepo) FindByID(id string) (*authdomain.User, error)       { return nil, nil }
func (r *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) { return nil, nil }
func (r *fakeUserRepo) FindByPhone(phone string) (*authdomain.User, error) {
	return r.byPhone[phone], nil
}
func (r *fakeUserRepo) Update(u *authdomain.User) error              { return nil }
func (r *fakeUserRepo) FindNotifiable() ([]*authdomain.User, error)  { return nil, nil }
func (r *fakeUserRepo) MarkWakeUpSent(id string, at time.Time) error { return nil }

type fakePipeline struct {
	reply   string
	err     error
	userIDs []string
	texts   []string
	channel usecase.Channel
}

func (p *fakePipeline) ProcessMessage(ctx context.Context, userID, text string, channel usecase.Channel) (string, error) {
	p.userIDs = append(p.userIDs, userID)
	p.texts = append(p.texts, text)
	p.channel = channel
	return p.reply, p.err
}

type fakeSMSReplier struct {
	sent map[string]string
}

func (s *fakeSMSReplier) Send(to, body string) (string, error) {
	if s.sent == nil {
		s.sent = map[string]string{}
	}
	s.sent[to] = body
	return "SM123", nil
}

type fakeWhatsAppReplier struct {
	live bool
	sent map[string]string
}

func (w *fakeWhatsAppReplier) IsLive() bool { return w.live }
func (w *fakeWhatsAppReplier) Send(ctx context.Context, phone, text string) error {
	if w.sent == nil {
		w.sent = map[string]string{}
	}
	w.sent[phone] = text
	return nil
}

type handlerFixture struct {
	h        *WebhookHandler
	pipeline *fakePipeline
	sms      *fakeSMSReplier
	whatsapp *fakeWhatsAppReplier
}

func newHandlerFixture() *handlerFixture {
	repo := &fakeUserRepo{byPhone: map[string]*authdomain.User{
		"5511999999999": {ID: "user-1", PhoneNumber: "5511999999999"},
	}}
	f := &handlerFixture{
		pipeline: &fakePipeline{reply: "Anotado!"},
		sms:      &fakeSMSReplier{},
		whatsapp: &fakeWhatsAppReplier{live: true},
	}
	f.h = NewWebhookHandler(inbound.NewResolver(repo), f.pipeline, f.sms, f.whatsapp)
	return f
}

func postSMS(h *WebhookHandler, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/sms", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.HandleSMS(c)
	return w
}

func postWhatsApp(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.HandleWhatsApp(c)
	return w
}

func TestHandleSMSProcessesAndReplies(t *testing.T) {
	f := newHandlerFixture()

	w := postSMS(f.h, url.Values{"From": {"+5511999999999"}, "Body": {"me lembra de pagar o aluguel"}})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"user-1"}, f.pipeline.userIDs)
	assert.Equal(t, []string{"me lembra de pagar o aluguel"}, f.pipeline.texts)
	assert.Equal(t, usecase.ChannelSMS, f.pipeline.channel)

	// Reply relayed to the original sender address
	assert.Equal(t, "Anotado!", f.sms.sent["+5511999999999"])
}

func TestHandleSMSMissingFieldsRejected(t *testing.T) {
	f := newHandlerFixture()

	w := postSMS(f.h, url.Values{"From": {"+5511999999999"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.pipeline.userIDs)
}

func TestHandleSMSUnknownSenderDroppedSilently(t *testing.T) {
	f := newHandlerFixture()

	w := postSMS(f.h, url.Values{"From": {"+5521888888888"}, "Body": {"oi"}})

	// 200 with no processing and no bounce reply
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.pipeline.userIDs)
	assert.Empty(t, f.sms.sent)
}

func TestHandleSMSPipelineErrorKeptGeneric(t *testing.T) {
	f := newHandlerFixture()
	f.pipeline.err = errors.New("gemini quota exhausted for project vida-prod")

	w := postSMS(f.h, url.Values{"From": {"+5511999999999"}, "Body": {"oi"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Internal detail stays server-side
	assert.NotContains(t, w.Body.String(), "gemini")
	assert.Contains(t, w.Body.String(), "internal error")
}

func TestHandleSMSLegacyPhoneRowStillResolves(t *testing.T) {
	repo := &fakeUserRepo{byPhone: map[string]*authdomain.User{
		"11999999999": {ID: "user-legacy", PhoneNumber: "11999999999"},
	}}
	pipeline := &fakePipeline{reply: "Ok"}
	h := NewWebhookHandler(inbound.NewResolver(repo), pipeline, nil, nil)

	w := postSMS(h, url.Values{"From": {"+5511999999999"}, "Body": {"oi"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user-legacy"}, pipeline.userIDs)
}

func TestHandleWhatsAppProcessesAndReplies(t *testing.T) {
	f := newHandlerFixture()

	w := postWhatsApp(f.h, `{"from":"5511999999999@s.whatsapp.net","text":"Lembra de me ligar pro médico às 15h"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"user-1"}, f.pipeline.userIDs)
	assert.Equal(t, usecase.ChannelWhatsApp, f.pipeline.channel)

	// Reply goes to the stored canonical number, not the JID
	assert.Equal(t, "Anotado!", f.whatsapp.sent["5511999999999"])
}

func TestHandleWhatsAppMissingFieldsRejected(t *testing.T) {
	f := newHandlerFixture()

	w := postWhatsApp(f.h, `{"from":"5511999999999"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.pipeline.userIDs)
}

func TestHandleWhatsAppUnknownSenderDroppedSilently(t *testing.T) {
	f := newHandlerFixture()

	w := postWhatsApp(f.h, `{"from":"5521888888888","text":"oi"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.pipeline.userIDs)
	assert.Empty(t, f.whatsapp.sent)
}

func TestHandleWhatsAppNoRelayWhenSessionDown(t *testing.T) {
	f := newHandlerFixture()
	f.whatsapp.live = false

	w := postWhatsApp(f.h, `{"from":"5511999999999","text":"oi"}`)

	// Processing still happens; only the relay is skipped
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user-1"}, f.pipeline.userIDs)
	assert.Empty(t, f.whatsapp.sent)
}

func TestHandleSMSEmptyReplyNotRelayed(t *testing.T) {
	f := newHandlerFixture()
	f.pipeline.reply = ""

	w := postSMS(f.h, url.Values{"From": {"+5511999999999"}, "Body": {"oi"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.sms.sent)
}
