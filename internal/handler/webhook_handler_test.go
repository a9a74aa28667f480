package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

var testWebhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("handler-webhook-secret"))

type WebhookHandlerSuite struct {
	suite.Suite
	auth   *webhook.Authenticator
	sync   *mockSynchronizer
	ledger *memoryLedger
	router *gin.Engine
}

func (s *WebhookHandlerSuite) SetupTest() {
	auth, err := webhook.NewAuthenticator(testWebhookSecret, 5*time.Minute)
	s.Require().NoError(err)
	s.auth = auth
	s.sync = new(mockSynchronizer)
	s.ledger = newMemoryLedger()

	logger := zap.NewNop()
	h := NewWebhookHandler(auth, webhook.NewDispatcher(s.sync, logger), s.ledger, nil, logger)

	s.router = gin.New()
	s.router.POST("/webhooks/clerk", h.HandleClerk)
}

func (s *WebhookHandlerSuite) deliver(id, payload string) *httptest.ResponseRecorder {
	now := time.Now()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(payload))
	req.Header.Set(webhook.HeaderID, id)
	req.Header.Set(webhook.HeaderTimestamp, strconv.FormatInt(now.Unix(), 10))
	req.Header.Set(webhook.HeaderSignature, s.auth.Sign(id, now, []byte(payload)))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

const webhookUserCreated = `{"type":"user.created","data":{"id":"ext_1","email_addresses":[{"email_address":"a@b.com"}],"username":"alice"}}`

func (s *WebhookHandlerSuite) TestUserCreated() {
	name := "alice"
	s.sync.On("CreateFromProvider", mock.Anything, "ext_1", "a@b.com", &name).Return(domain.SyncCreated, nil).Once()

	w := s.deliver("msg_1", webhookUserCreated)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("Webhook processed successfully.", w.Body.String())
	s.sync.AssertExpectations(s.T())
}

func (s *WebhookHandlerSuite) TestRedeliverySkipsDispatch() {
	name := "alice"
	s.sync.On("CreateFromProvider", mock.Anything, "ext_1", "a@b.com", &name).Return(domain.SyncCreated, nil).Once()

	s.Equal(http.StatusOK, s.deliver("msg_1", webhookUserCreated).Code)
	s.Equal(http.StatusOK, s.deliver("msg_1", webhookUserCreated).Code)

	s.sync.AssertNumberOfCalls(s.T(), "CreateFromProvider", 1)
}

func (s *WebhookHandlerSuite) TestDuplicateCreateWithNewDeliveryID() {
	name := "alice"
	s.sync.On("CreateFromProvider", mock.Anything, "ext_1", "a@b.com", &name).Return(domain.SyncCreated, nil).Once()
	s.sync.On("CreateFromProvider", mock.Anything, "ext_1", "a@b.com", &name).Return(domain.SyncAlreadySynced, nil).Once()

	s.Equal(http.StatusOK, s.deliver("msg_1", webhookUserCreated).Code)
	s.Equal(http.StatusOK, s.deliver("msg_2", webhookUserCreated).Code)

	s.sync.AssertExpectations(s.T())
}

func (s *WebhookHandlerSuite) TestLedgerUnavailableStillProcesses() {
	s.ledger.err = assert.AnError
	s.sync.On("DeleteFromProvider", mock.Anything, "ext_1").Return(domain.SyncDeleted, nil).Once()

	w := s.deliver("msg_3", `{"type":"user.deleted","data":{"id":"ext_1"}}`)

	s.Equal(http.StatusOK, w.Code)
	s.sync.AssertExpectations(s.T())
}

func (s *WebhookHandlerSuite) TestBadSignature() {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(webhookUserCreated))
	req.Header.Set(webhook.HeaderID, "msg_1")
	req.Header.Set(webhook.HeaderTimestamp, strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set(webhook.HeaderSignature, "v1,"+base64.StdEncoding.EncodeToString([]byte("forged")))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Webhook signature verification failed.", w.Body.String())
	s.sync.AssertNotCalled(s.T(), "CreateFromProvider", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *WebhookHandlerSuite) TestTamperedBody() {
	now := time.Now()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		strings.NewReader(strings.Replace(webhookUserCreated, "alice", "mallory", 1)))
	req.Header.Set(webhook.HeaderID, "msg_1")
	req.Header.Set(webhook.HeaderTimestamp, strconv.FormatInt(now.Unix(), 10))
	req.Header.Set(webhook.HeaderSignature, s.auth.Sign("msg_1", now, []byte(webhookUserCreated)))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.sync.AssertNotCalled(s.T(), "CreateFromProvider", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *WebhookHandlerSuite) TestOversizedBody() {
	w := s.deliver("msg_big", `{"type":"user.created","data":{"id":"`+strings.Repeat("x", maxRequestBodySize)+`"}}`)

	s.Equal(http.StatusRequestEntityTooLarge, w.Code)
	s.Equal("Webhook payload too large.", w.Body.String())
}

func (s *WebhookHandlerSuite) TestUnreadableBody() {
	body := io.MultiReader(strings.NewReader(`{"type":`), iotest.ErrReader(errors.New("connection reset by peer")))
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", body)
	req.Header.Set(webhook.HeaderID, "msg_broken")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Webhook payload could not be read.", w.Body.String())
	s.sync.AssertNotCalled(s.T(), "CreateFromProvider", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *WebhookHandlerSuite) TestDeleteWithoutID() {
	w := s.deliver("msg_4", `{"type":"user.deleted","data":{}}`)

	s.Require().Equal(http.StatusBadRequest, w.Code)
	var resp dto.ValidationErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().NotEmpty(resp.Errors)
	s.Equal("data.id", resp.Errors[0].Field)
	s.sync.AssertNotCalled(s.T(), "DeleteFromProvider", mock.Anything, mock.Anything)
}

func (s *WebhookHandlerSuite) TestUnknownTypeAcknowledged() {
	w := s.deliver("msg_5", `{"type":"session.created","data":{"id":"sess_1"}}`)

	s.Equal(http.StatusOK, w.Code)
	s.sync.AssertExpectations(s.T())
}

func (s *WebhookHandlerSuite) TestPersistenceFailure() {
	s.sync.On("UpdateFromProvider", mock.Anything, "ext_1", (*string)(nil)).Return(domain.SyncOutcome(""), assert.AnError).Once()

	w := s.deliver("msg_6", `{"type":"user.updated","data":{"id":"ext_1","username":null}}`)

	s.Equal(http.StatusInternalServerError, w.Code)

	processed, err := s.ledger.IsProcessed(context.Background(), "msg_6")
	s.Require().NoError(err)
	s.False(processed)
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerSuite))
}
