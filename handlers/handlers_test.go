package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tablecall/middleware"
	"tablecall/models"
	"tablecall/services/booking"
	"tablecall/services/vapi"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mock FlowService ---

type mockFlowService struct {
	searchFn    func(ctx context.Context, input booking.SearchInput) (*booking.SearchResult, error)
	initiateFn  func(ctx context.Context, input booking.BookingInput) (*booking.BookingResult, error)
	callEndedFn func(ctx context.Context, event booking.CallEndedEvent) error
	getFn       func(ctx context.Context, id string) (*models.Booking, error)
	listFn      func(ctx context.Context) ([]models.Booking, error)
}

func (m *mockFlowService) SearchRestaurants(ctx context.Context, input booking.SearchInput) (*booking.SearchResult, error) {
	return m.searchFn(ctx, input)
}
func (m *mockFlowService) InitiateBooking(ctx context.Context, input booking.BookingInput) (*booking.BookingResult, error) {
	return m.initiateFn(ctx, input)
}
func (m *mockFlowService) HandleCallEnded(ctx context.Context, event booking.CallEndedEvent) error {
	return m.callEndedFn(ctx, event)
}
func (m *mockFlowService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return m.getFn(ctx, id)
}
func (m *mockFlowService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return m.listFn(ctx)
}

// --- Mock Dialer ---

type mockDialer struct {
	lastReq *vapi.CallRequest
}

func (m *mockDialer) PlaceCall(ctx context.Context, req vapi.CallRequest) (*vapi.CallResponse, error) {
	m.lastReq = &req
	return &vapi.CallResponse{ID: "call-99", Status: "queued"}, nil
}

func newTestRouter(svc booking.FlowService, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fh := NewFlowHandler(svc, zap.NewNop())

	api := r.Group("/vapi")
	api.Use(middleware.WebhookAuthMiddleware(secret))
	api.POST("/tools", fh.HandleToolCalls)
	api.POST("/events", fh.HandleEvents)

	r.GET("/bookings", fh.ListBookings)
	r.GET("/bookings/:id", fh.GetBooking)
	return r
}

func postJSON(r *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func toolCallBody(name, args string) string {
	return `{"message":{"type":"tool-calls","call":{"id":"call-1"},"toolCalls":[` +
		`{"id":"tc-1","function":{"name":"` + name + `","arguments":` + args + `}}]}}`
}

func TestToolDispatchSearch(t *testing.T) {
	svc := &mockFlowService{
		searchFn: func(ctx context.Context, input booking.SearchInput) (*booking.SearchResult, error) {
			assert.Equal(t, "San Jose, CA", input.Location)
			return &booking.SearchResult{Spoken: "I found 1 restaurants for you: Zareen's."}, nil
		},
	}
	r := newTestRouter(svc, "")

	rec := postJSON(r, "/vapi/tools",
		toolCallBody("search_restaurants", `{"query":"indian","location":"San Jose, CA"}`), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ToolCallResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "tc-1", resp.Results[0].ToolCallID)
	assert.Contains(t, resp.Results[0].Result, "Zareen's")
}

func TestToolDispatchInitiateBooking(t *testing.T) {
	svc := &mockFlowService{
		initiateFn: func(ctx context.Context, input booking.BookingInput) (*booking.BookingResult, error) {
			assert.Equal(t, "Zareen's", input.RestaurantName)
			assert.Equal(t, 2, input.PartySize)
			return &booking.BookingResult{Spoken: "I'm now calling Zareen's.", BookingID: "b1"}, nil
		},
	}
	r := newTestRouter(svc, "")

	rec := postJSON(r, "/vapi/tools", toolCallBody("initiate_booking",
		`{"restaurant_name":"Zareen's","restaurant_phone":"+14085550101","date":"2026-09-01","time":"7:00 PM","party_size":2}`), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ToolCallResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Contains(t, resp.Results[0].Result, "calling Zareen's")
}

func TestToolDispatchUnknownToolStillAnswers200(t *testing.T) {
	r := newTestRouter(&mockFlowService{}, "")

	rec := postJSON(r, "/vapi/tools", toolCallBody("order_pizza", `{}`), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ToolCallResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Contains(t, resp.Results[0].Result, "Unknown tool")
}

func TestToolFailureBecomesSpokenFallback(t *testing.T) {
	svc := &mockFlowService{
		searchFn: func(ctx context.Context, input booking.SearchInput) (*booking.SearchResult, error) {
			return nil, booking.NewServiceUnavailable("scraper down")
		},
	}
	r := newTestRouter(svc, "")

	rec := postJSON(r, "/vapi/tools",
		toolCallBody("search_restaurants", `{"query":"q","location":"l"}`), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "isn't available right now")
}

func TestWebhookAuthRejectsBadSecret(t *testing.T) {
	r := newTestRouter(&mockFlowService{}, "top-secret")

	rec := postJSON(r, "/vapi/tools", toolCallBody("search_restaurants", `{}`), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(r, "/vapi/tools", toolCallBody("search_restaurants", `{}`),
		map[string]string{"x-vapi-secret": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookAuthAcceptsGoodSecret(t *testing.T) {
	svc := &mockFlowService{
		callEndedFn: func(ctx context.Context, event booking.CallEndedEvent) error { return nil },
	}
	r := newTestRouter(svc, "top-secret")

	rec := postJSON(r, "/vapi/events",
		`{"message":{"type":"end-of-call-report","call":{"id":"call-1","endedReason":"assistant-ended-call"}}}`,
		map[string]string{"x-vapi-secret": "top-secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "received")
}

func TestEventsUnknownCallIsIgnored(t *testing.T) {
	svc := &mockFlowService{
		callEndedFn: func(ctx context.Context, event booking.CallEndedEvent) error {
			return booking.NewNotFound("no booking for call " + event.CallID)
		},
	}
	r := newTestRouter(svc, "")

	rec := postJSON(r, "/vapi/events",
		`{"message":{"type":"end-of-call-report","call":{"id":"call-mystery","endedReason":"assistant-ended-call"}}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
}

func TestEventsNonReportTypesAcknowledged(t *testing.T) {
	r := newTestRouter(&mockFlowService{}, "")

	rec := postJSON(r, "/vapi/events",
		`{"message":{"type":"transcript","call":{"id":"call-1"},"role":"user","transcript":"hello"}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "received")
}

func TestListBookings(t *testing.T) {
	svc := &mockFlowService{
		listFn: func(ctx context.Context) ([]models.Booking, error) {
			return []models.Booking{
				{ID: "b1", Status: models.StatusNotified},
				{ID: "b2", Status: models.StatusPending},
			}, nil
		},
	}
	r := newTestRouter(svc, "")

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestGetBookingNotFound(t *testing.T) {
	svc := &mockFlowService{
		getFn: func(ctx context.Context, id string) (*models.Booking, error) {
			return nil, booking.NewNotFound("booking " + id + " not found")
		},
	}
	r := newTestRouter(svc, "")

	req := httptest.NewRequest(http.MethodGet, "/bookings/ghost", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTriggerCall(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dialer := &mockDialer{}
	ch := NewCallHandler(dialer, "+16505550100", zap.NewNop())

	r := gin.New()
	r.POST("/calls/trigger", ch.TriggerCall)

	rec := postJSON(r, "/calls/trigger", `{"name":"Alice","account":"ACC001"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "call_initiated")

	require.NotNil(t, dialer.lastReq)
	assert.Equal(t, "+16505550100", dialer.lastReq.CustomerPhone)
	assert.Equal(t, "Alice", dialer.lastReq.Variables["customerName"])
	assert.Equal(t, "ACC001", dialer.lastReq.Variables["accountId"])
}
