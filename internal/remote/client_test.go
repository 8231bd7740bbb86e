package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/lab_order/internal/app/metrics"
	"github.com/R3E-Network/lab_order/internal/domain"
	"github.com/R3E-Network/lab_order/pkg/logger"
	"github.com/R3E-Network/lab_order/pkg/testutil"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, Logger: logger.NewDiscard("remote-test")})
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	c, err := New(Config{BaseURL: "https://script.example.com/macros/s/abc/exec"})
	require.NoError(t, err)
	assert.Equal(t, "https://script.example.com/macros/s/abc/exec", c.BaseURL())
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.Nil(t, c.limiter)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "/relative/path"})
	assert.Error(t, err)
}

func TestNew_RateLimit(t *testing.T) {
	c, err := New(Config{BaseURL: "http://localhost", RateLimit: 2})
	require.NoError(t, err)
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())
}

func TestGetProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "getProducts", r.URL.Query().Get("action"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.Write([]byte(`{"success":true,"data":[
			{"id":"p1","name":"Pipette tips","short_name":"tips","manufacturer":"Acme","catalog_number":"T-200","capacity":"96/rack","usage_place":"Lab A","category":"Plastics"},
			{"id":42,"name":"Ethanol","capacity":500,"category":""}
		]}`))
	}))
	defer server.Close()

	products, err := newTestClient(t, server.URL).GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "tips", products[0].ShortName)
	assert.Equal(t, "Plastics", products[0].Category)
	assert.Equal(t, "42", products[1].ID)
	assert.Equal(t, "500", products[1].Capacity)
}

func TestGetProducts_PreservesBaseQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k1", r.URL.Query().Get("key"))
		assert.Equal(t, "getMembers", r.URL.Query().Get("action"))
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	members, err := newTestClient(t, server.URL+"/exec?key=k1").GetMembers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestGetOrders_ItemsArrayBecomesString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"id":1,"order_number":"ORD-20240501-0001","order_date":"2024-05-01","items":[{"productId":"p1","quantity":2}],"status":"draft"},
			{"id":2,"order_number":"ORD-20240502-0002","items":"[{\"productId\":\"p2\",\"quantity\":1}]","status":"completed"}
		]}`))
	}))
	defer server.Close()

	orders, err := newTestClient(t, server.URL).GetOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "1", orders[0].ID)
	require.Len(t, orders[0].Lines(), 1)
	assert.Equal(t, 2, orders[0].Lines()[0].Quantity)
	assert.Equal(t, domain.OrderStatusCompleted, orders[1].Status)
	assert.Equal(t, "p2", orders[1].Lines()[0].ProductID)
}

func TestRead_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"sheet missing"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetProducts(context.Background())
	require.Error(t, err)
	assert.True(t, IsAPI(err))
	assert.False(t, IsTransport(err))
	assert.Contains(t, err.Error(), "sheet missing")
}

func TestRead_APIErrorRecordedOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"boom"}`))
	}))
	defer server.Close()

	action := string(ActionGetMembers)
	okBefore := promtest.ToFloat64(metrics.RemoteRequests(action, metrics.OutcomeOK))
	apiBefore := promtest.ToFloat64(metrics.RemoteRequests(action, metrics.OutcomeAPI))

	_, err := newTestClient(t, server.URL).GetMembers(context.Background())
	require.Error(t, err)

	assert.Equal(t, okBefore, promtest.ToFloat64(metrics.RemoteRequests(action, metrics.OutcomeOK)))
	assert.Equal(t, apiBefore+1, promtest.ToFloat64(metrics.RemoteRequests(action, metrics.OutcomeAPI)))
}

func TestWrite_SuccessRecordedOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	action := string(ActionDeleteMember)
	okBefore := promtest.ToFloat64(metrics.RemoteRequests(action, metrics.OutcomeOK))
	apiBefore := promtest.ToFloat64(metrics.RemoteRequests(action, metrics.OutcomeAPI))

	require.NoError(t, newTestClient(t, server.URL).DeleteMember(context.Background(), "m1"))

	assert.Equal(t, okBefore+1, promtest.ToFloat64(metrics.RemoteRequests(action, metrics.OutcomeOK)))
	assert.Equal(t, apiBefore, promtest.ToFloat64(metrics.RemoteRequests(action, metrics.OutcomeAPI)))
}

func TestRead_BareFailureWithoutMessageIsAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	products, err := newTestClient(t, server.URL).GetProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRead_TransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "html body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>Sign in</html>"))
			},
			status: http.StatusOK,
		},
		{
			name: "data not array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":true,"data":{"id":"p1"}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestClient(t, server.URL).GetProducts(context.Background())
			require.Error(t, err)
			require.True(t, IsTransport(err), "got %T", err)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, ActionGetProducts, te.Action)
			assert.Equal(t, tt.status, te.StatusCode)
		})
	}
}

func TestRead_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).GetMembers(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestRead_RetriesWhenConfigured(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success":true,"data":[{"id":"m1","name":"Sato"}]}`))
	}))
	defer server.Close()

	retry := DefaultRetryConfig()
	retry.MaxRetries = 2
	retry.InitialBackoff = time.Millisecond
	c, err := New(Config{BaseURL: server.URL, Retry: retry, Logger: logger.NewDiscard("remote-test")})
	require.NoError(t, err)

	members, err := c.GetMembers(context.Background())
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRead_NoRetryByDefault(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetMembers(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestWrite_NeverRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	retry := DefaultRetryConfig()
	retry.MaxRetries = 3
	retry.InitialBackoff = time.Millisecond
	c, err := New(Config{BaseURL: server.URL, Retry: retry, Logger: logger.NewDiscard("remote-test")})
	require.NoError(t, err)

	_, err = c.CreateOrder(context.Background(), domain.Order{OrderNumber: "ORD-20240501-0001"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestWrite_BareFailureIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).DeleteMember(context.Background(), "m1")
	require.Error(t, err)
	assert.True(t, IsAPI(err))
	assert.Contains(t, err.Error(), "rejected")
}

func TestSaveProduct_CreateSendsNullID(t *testing.T) {
	store := testutil.NewFakeStore()
	defer store.Close()

	c := newTestClient(t, store.URL())
	require.NoError(t, c.SaveProduct(context.Background(), domain.Product{Name: "Gloves", Category: "PPE"}))
	require.NoError(t, c.SaveProduct(context.Background(), domain.Product{ID: "P001", Name: "Nitrile gloves"}))

	calls := store.CallsFor("saveProduct")
	require.Len(t, calls, 2)

	id, present := calls[0].Body["id"]
	assert.True(t, present)
	assert.Nil(t, id)
	assert.Equal(t, "Gloves", calls[0].Body["name"])
	assert.Equal(t, "P001", calls[1].Body["id"])

	products := store.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "Nitrile gloves", products[0].Name)
}

func TestCreateOrder_Payload(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json;charset=utf-8", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"success":true,"data":{"id":17,"order_number":"ORD-20240501-0042","status":"draft"}}`))
	}))
	defer server.Close()

	order := domain.Order{
		OrderNumber: "ORD-20240501-0042",
		OrderDate:   "2024-05-01",
		MemberName:  "Sato",
		MemberEmail: "sato@example.com",
		Items:       `[{"productId":"p1","quantity":2}]`,
		Status:      domain.OrderStatusDraft,
	}
	created, err := newTestClient(t, server.URL).CreateOrder(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, "createOrder", body["action"])
	assert.Equal(t, "ORD-20240501-0042", body["order_number"])
	assert.Equal(t, "draft", body["status"])
	assert.Equal(t, "", body["notes"])
	assert.IsType(t, "", body["items"])

	assert.Equal(t, "17", created.ID)
	assert.Equal(t, "Sato", created.MemberName)
}

func TestCreateOrder_NoDataFallsBackToSubmitted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	order := domain.Order{OrderNumber: "ORD-20240501-0001"}
	created, err := newTestClient(t, server.URL).CreateOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, order, created)
}

func TestRead_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, server.URL).GetOrders(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
