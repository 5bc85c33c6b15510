package moysklad

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlegEV/moysklad-autoproduction/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL:       srv.URL,
		Token:         "test-token",
		TriggerEntity: "demand",
		HTTPClient:    srv.Client(),
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"meta":{"href":"x"},"rows":[]}`))
	})

	_, err := c.Organization(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestFindStoreByName(t *testing.T) {
	t.Run("returns first match", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/entity/store", r.URL.Path)
			assert.Equal(t, "name=Main Warehouse", r.URL.Query().Get("filter"))
			_, _ = w.Write([]byte(`{"meta":{"href":"x"},"rows":[
				{"meta":{"href":"https://example.test/entity/store/store-1"},"id":"store-1","name":"Main Warehouse"},
				{"meta":{"href":"https://example.test/entity/store/store-2"},"id":"store-2","name":"Main Warehouse 2"}
			]}`))
		})

		store, err := c.FindStoreByName(context.Background(), "Main Warehouse")
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, "store-1", store.ID)
	})

	t.Run("no match returns nil without error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"meta":{"href":"x"},"rows":[]}`))
		})

		store, err := c.FindStoreByName(context.Background(), "Missing")
		require.NoError(t, err)
		assert.Nil(t, store)
	})
}

func TestProductStock(t *testing.T) {
	report := `{"meta":{"href":"x"},"rows":[
		{"meta":{"href":"https://example.test/entity/product/prod-1?x=1"},"stockByStore":[
			{"meta":{"href":"https://example.test/entity/store/store-other"},"stock":99,"reserve":0,"inTransit":0},
			{"meta":{"href":"https://example.test/entity/store/store-1"},"stock":7,"reserve":3,"inTransit":0}
		]},
		{"meta":{"href":"https://example.test/entity/product/prod-2"},"stockByStore":[
			{"meta":{"href":"https://example.test/entity/store/store-1"},"stock":1,"reserve":0,"inTransit":0}
		]}
	]}`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/report/stock/bystore", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(report))
	})

	t.Run("subtracts reserve", func(t *testing.T) {
		stock, err := c.ProductStock(context.Background(), "prod-1", "store-1")
		require.NoError(t, err)
		assert.Equal(t, 4.0, stock)
	})

	t.Run("absent product reports zero", func(t *testing.T) {
		stock, err := c.ProductStock(context.Background(), "prod-404", "store-1")
		require.NoError(t, err)
		assert.Equal(t, 0.0, stock)
	})

	t.Run("absent store reports zero", func(t *testing.T) {
		stock, err := c.ProductStock(context.Background(), "prod-2", "store-404")
		require.NoError(t, err)
		assert.Equal(t, 0.0, stock)
	})
}

func TestProductExpandsAttributes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entity/product/prod-1", r.URL.Path)
		assert.Equal(t, "attributes", r.URL.Query().Get("expand"))
		_, _ = w.Write([]byte(`{"meta":{"href":"h"},"id":"prod-1","name":"Chair","attributes":[{"id":"a1","name":"Tech Card","value":"Chair Assembly"}]}`))
	})

	p, err := c.Product(context.Background(), "prod-1")
	require.NoError(t, err)
	require.Len(t, p.Attributes, 1)
	assert.Equal(t, "Chair Assembly", p.Attributes[0].AsString())
}

func TestFindProcessingPlanByName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entity/processingplan", r.URL.Path)
		assert.Equal(t, "name=Chair Assembly", r.URL.Query().Get("filter"))
		assert.Equal(t, "materials,products", r.URL.Query().Get("expand"))
		_, _ = w.Write([]byte(`{"meta":{"href":"x"},"rows":[{"meta":{"href":"h"},"id":"plan-1","name":"Chair Assembly","materials":{"meta":{"href":"m"},"rows":[{"product":{"meta":{"href":"https://example.test/entity/product/mat-1"},"name":"Leg"},"assortment":{"meta":{"href":"https://example.test/entity/product/mat-1"}},"quantity":4}]}}]}`))
	})

	plan, err := c.FindProcessingPlanByName(context.Background(), "Chair Assembly")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "plan-1", plan.ID)
	require.Len(t, plan.MaterialRows(), 1)
	assert.Equal(t, 4.0, plan.MaterialRows()[0].Quantity)
}

func TestCreateAndApplyProcessing(t *testing.T) {
	t.Run("create posts full body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/entity/processing", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 3.0, body["quantity"])
			assert.Equal(t, 0.0, body["processingSum"])
			assert.Contains(t, body, "processingPlan")
			assert.Contains(t, body, "store")
			assert.Contains(t, body, "productsStore")
			assert.Contains(t, body, "organization")

			_, _ = w.Write([]byte(`{"meta":{"href":"h"},"id":"proc-1","name":"00042"}`))
		})

		req := domain.CreateProcessingRequest{
			ProcessingPlan: domain.MetaRef{Meta: domain.Meta{Href: "https://example.test/entity/processingplan/plan-1"}},
			Store:          domain.MetaRef{Meta: domain.Meta{Href: "https://example.test/entity/store/store-1"}},
			ProductsStore:  domain.MetaRef{Meta: domain.Meta{Href: "https://example.test/entity/store/store-1"}},
			Organization:   domain.MetaRef{Meta: domain.Meta{Href: "https://example.test/entity/organization/org-1"}},
			Quantity:       3.0,
		}
		p, err := c.CreateProcessing(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "proc-1", p.ID)
	})

	t.Run("apply puts applicable true", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/entity/processing/proc-1", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, true, body["applicable"])

			_, _ = w.Write([]byte(`{"meta":{"href":"h"},"id":"proc-1","name":"00042","applicable":true}`))
		})

		p, err := c.ApplyProcessing(context.Background(), "proc-1")
		require.NoError(t, err)
		require.NotNil(t, p.Applicable)
		assert.True(t, *p.Applicable)
	})
}

func TestDocumentUsesConfiguredEntity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entity/demand/doc-1", r.URL.Path)
		assert.Equal(t, "positions,store,organization,agent", r.URL.Query().Get("expand"))
		_, _ = w.Write([]byte(`{"meta":{"href":"h"},"id":"doc-1","name":"D-1","applicable":true,"positions":{"meta":{"href":"p"},"rows":[{"assortment":{"meta":{"href":"https://example.test/entity/product/prod-1"},"name":"Chair"},"quantity":2}]}}`))
	})

	doc, err := c.Document(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.True(t, doc.Applicable)
	require.NotNil(t, doc.Positions)
	require.Len(t, doc.Positions.Rows, 1)
	assert.Equal(t, "prod-1", doc.Positions.Rows[0].ProductID())
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("non-2xx becomes RemoteError with body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":[{"error":"auth failed"}]}`))
		})

		_, err := c.Organization(context.Background())
		var remoteErr *RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, http.StatusUnauthorized, remoteErr.Status)
		assert.Contains(t, remoteErr.Body, "auth failed")
	})

	t.Run("bad json becomes DecodeError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rows": not-json`))
		})

		_, err := c.Organization(context.Background())
		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})

	t.Run("connection failure becomes TransportError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		c := New(Config{
			BaseURL:       srv.URL,
			Token:         "t",
			TriggerEntity: "demand",
			HTTPClient:    srv.Client(),
			Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		srv.Close()

		_, err := c.Organization(context.Background())
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
	})
}
