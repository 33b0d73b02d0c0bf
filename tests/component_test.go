package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"luxetravel/app"
	"luxetravel/entity"
	"luxetravel/gateway"
)

var httpAddress = "127.0.0.1:8099"

func TestComponent(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("github.com/redis/go-redis/v9/internal/pool.(*ConnPool).reaper"),
		goleak.IgnoreTopFunction("github.com/testcontainers/testcontainers-go.(*Reaper).Connect.func1"),
	)

	ctx, cancel := context.WithCancel(context.Background())

	departure := time.Date(2024, time.May, 3, 8, 0, 0, 0, time.UTC)
	busClient := &gateway.BusMock{
		LoginToken: signToken(t, 7, "Jane Doe", "jane@example.com", time.Now().Add(time.Hour)),
		Buses: []entity.Bus{
			{ID: 3, Name: "Luxe Prime", DepartureCity: "Jakarta", ArrivalCity: "Bandung", DepartureTime: departure, Price: 150_000},
		},
		Cities: []entity.City{{Name: "Jakarta"}, {Name: "Bandung"}},
	}
	foodClient := &gateway.FoodMock{
		LoginToken: signToken(t, 99, "Service Account", "luxetravel@example.com", time.Now().Add(time.Hour)),
		MenuItems:  []entity.FoodItem{{FoodID: 1, FoodName: "Nasi Goreng", Price: 25_000}},
	}

	a, err := app.NewWithGateways(app.Config{
		HTTPAddr:            httpAddress,
		FoodServiceEmail:    "luxetravel@example.com",
		FoodServicePassword: "password123",
	}, busClient, foodClient)
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		assert.NoError(t, a.Run(ctx))
		close(finished)
	}()

	defer func() {
		cancel()
		<-finished
	}()

	waitForHTTPServer(t)

	// Unauthenticated requests are rejected.
	resp := doRequest(t, http.MethodGet, "/routes", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Federated login: one call logs into both services.
	var login struct {
		UserID int    `json:"user_id"`
		Name   string `json:"name"`
	}
	resp = doRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "jane@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &login)
	assert.Equal(t, 7, login.UserID)
	assert.Equal(t, "Jane Doe", login.Name)
	assert.Equal(t, 1, busClient.LoginCalls)
	assert.Equal(t, 1, foodClient.LoginCalls)

	// Reference data is served from the read-through cache.
	var buses []entity.Bus
	resp = doRequest(t, http.MethodGet, "/routes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &buses)
	require.Len(t, buses, 1)

	var menu []entity.FoodItem
	resp = doRequest(t, http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &menu)
	require.Len(t, menu, 1)

	// Book a seat with a meal: draft, attach food, confirm.
	var draft entity.BookingDraft
	resp = doRequest(t, http.MethodPost, "/drafts", map[string]any{
		"bus_id":  3,
		"no_seat": "12A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeResponse(t, resp, &draft)
	require.NotEmpty(t, draft.ID)

	resp = doRequest(t, http.MethodPut, "/drafts/"+draft.ID+"/food", map[string]any{
		"items": []map[string]any{
			{"food_id": 1, "food_name": "Nasi Goreng", "price": 25_000, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var confirmed struct {
		TicketCode string `json:"ticket_code"`
		TotalPrice int64  `json:"total_price"`
		HasAddons  bool   `json:"has_addons"`
	}
	resp = doRequest(t, http.MethodPost, "/drafts/"+draft.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &confirmed)
	assert.Equal(t, "LUX-JDLPJB0305081", confirmed.TicketCode)
	assert.Equal(t, int64(200_000), confirmed.TotalPrice)
	assert.True(t, confirmed.HasAddons)

	require.Equal(t, 1, busClient.CreatedTicketCount())
	require.Equal(t, 1, foodClient.CreatedOrderCount())
	assert.Zero(t, busClient.DeletedCodeCount())

	// The confirmed draft is gone; confirming it again is a 404, not a
	// duplicate booking.
	resp = doRequest(t, http.MethodPost, "/drafts/"+draft.ID+"/confirm", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Logout tears the session down; the next call is unauthenticated.
	resp = doRequest(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, "/routes", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func waitForHTTPServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(fmt.Sprintf("http://%s/health", httpAddress))
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		},
		time.Second*10,
		time.Millisecond*50,
	)
}

type testResponse struct {
	StatusCode int
	Body       []byte
}

func doRequest(t *testing.T, method, path string, body any) testResponse {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("http://%s%s", httpAddress, path), reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testResponse{StatusCode: resp.StatusCode, Body: payload}
}

func decodeResponse(t *testing.T, resp testResponse, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body, out))
}

func signToken(t *testing.T, userID int, name, email string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    userID,
		"name":  name,
		"email": email,
		"exp":   expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("component-test-secret"))
	require.NoError(t, err)
	return signed
}
