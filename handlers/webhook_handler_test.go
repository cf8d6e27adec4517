package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constanciaAPI/services"
)

var (
	signingKey    = []byte("constancia-webhook-signing-key")
	webhookSecret = "whsec_" + base64.StdEncoding.EncodeToString(signingKey)
)

func sign(id string, ts time.Time, body string) string {
	mac := hmac.New(sha256.New, signingKey)
	mac.Write([]byte(id + "." + strconv.FormatInt(ts.Unix(), 10) + "." + body))
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body string, ts time.Time, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/clerk", strings.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("svix-signature", signature)
	return req
}

func newWebhookHandler(store *services.MemoryStore) *WebhookHandler {
	return NewWebhookHandler(services.NewProfileService(store, "UTC"), webhookSecret)
}

const userCreated = `{"type":"user.created","object":"event","data":{"id":"user_abc","public_metadata":{},"unsafe_metadata":{"timezone":"Europe/Sofia"}}}`

func TestClerkWebhook_UserCreated(t *testing.T) {
	deliveredAt := time.Now()
	store := services.NewMemoryStore()
	h := newWebhookHandler(store)

	// a rotated secret sends several signatures; any match is enough
	sig := "v1,bm90LXRoZS1zaWduYXR1cmU= " + sign("msg_1", deliveredAt, userCreated)

	rr := httptest.NewRecorder()
	h.HandleClerkWebhook(rr, webhookRequest(userCreated, deliveredAt, sig))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	p, err := store.GetProfileByClerkID(context.Background(), "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Sofia", p.Timezone)
}

func TestClerkWebhook_UserDeleted(t *testing.T) {
	store := services.NewMemoryStore()
	_, err := store.CreateProfile(context.Background(), "user_abc", "UTC")
	require.NoError(t, err)
	h := newWebhookHandler(store)
	deliveredAt := time.Now()

	body := `{"type":"user.deleted","object":"event","data":{"id":"user_abc","deleted":true}}`
	rr := httptest.NewRecorder()
	h.HandleClerkWebhook(rr, webhookRequest(body, deliveredAt, sign("msg_1", deliveredAt, body)))
	require.Equal(t, http.StatusOK, rr.Code)

	_, err = store.GetProfileByClerkID(context.Background(), "user_abc")
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	// redelivery of the same event is harmless
	rr = httptest.NewRecorder()
	h.HandleClerkWebhook(rr, webhookRequest(body, deliveredAt, sign("msg_1", deliveredAt, body)))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestClerkWebhook_Rejected(t *testing.T) {
	deliveredAt := time.Now()
	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{
			name: "tampered body",
			req: func() *http.Request {
				return webhookRequest(strings.Replace(userCreated, "user_abc", "user_evil", 1), deliveredAt,
					sign("msg_1", deliveredAt, userCreated))
			},
		},
		{
			name: "stale timestamp",
			req: func() *http.Request {
				old := deliveredAt.Add(-10 * time.Minute)
				return webhookRequest(userCreated, old, sign("msg_1", old, userCreated))
			},
		},
		{
			name: "hex signature",
			req: func() *http.Request {
				return webhookRequest(userCreated, deliveredAt, "v1,6a09e667f3bcc908b2fb1366ea957d3e")
			},
		},
		{
			name: "missing headers",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/clerk", strings.NewReader(userCreated))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := services.NewMemoryStore()
			h := newWebhookHandler(store)

			rr := httptest.NewRecorder()
			h.HandleClerkWebhook(rr, tt.req())
			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			_, err := store.GetProfileByClerkID(context.Background(), "user_abc")
			assert.ErrorIs(t, err, services.ErrUserNotFound)
		})
	}
}

func TestClerkWebhook_RejectsWithoutSecret(t *testing.T) {
	for _, secret := range []string{"", "whsec_not base64!"} {
		t.Run(secret, func(t *testing.T) {
			store := services.NewMemoryStore()
			_, err := store.CreateProfile(context.Background(), "user_victim", "UTC")
			require.NoError(t, err)
			h := NewWebhookHandler(services.NewProfileService(store, "UTC"), secret)

			body := `{"type":"user.deleted","object":"event","data":{"id":"user_victim","deleted":true}}`
			rr := httptest.NewRecorder()
			h.HandleClerkWebhook(rr, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(body)))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			_, err = store.GetProfileByClerkID(context.Background(), "user_victim")
			assert.NoError(t, err)
		})
	}
}
