package recordstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)

	return &Client{
		HTTP:    srv.Client(),
		BaseURL: srv.URL,
		APIKey:  "test-key",
		BaseID:  "appTest",
	}, srv
}

func TestListFollowsPaginationOffsets(t *testing.T) {
	var offsets []string

	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("offset"))

		switch len(offsets) {
		case 1:
			json.NewEncoder(w).Encode(map[string]any{
				"records": []Record{{ID: "rec1", Fields: map[string]any{}}},
				"offset":  "page2",
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"records": []Record{{ID: "rec2", Fields: map[string]any{}}},
			})
		}
	}))
	defer srv.Close()

	recs, err := client.List(context.Background(), "Image Queue", ListOptions{})
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, "rec1", recs[0].ID)
	assert.Equal(t, "rec2", recs[1].ID)
	assert.Equal(t, []string{"", "page2"}, offsets)
}

func TestListSendsQueryOptions(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "{User Email} = 'a@b.com'", q.Get("filterByFormula"))
		assert.Equal(t, "Priority", q.Get("sort[0][field]"))
		assert.Equal(t, "desc", q.Get("sort[0][direction]"))
		assert.Equal(t, "1", q.Get("maxRecords"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{"records": []Record{}})
	}))
	defer srv.Close()

	_, err := client.List(context.Background(), "Image Queue", ListOptions{
		FilterByFormula: "{User Email} = 'a@b.com'",
		SortField:       "Priority",
		SortDesc:        true,
		MaxRecords:      1,
	})
	require.NoError(t, err)
}

func TestCreateRequiresRecordID(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"fields": map[string]any{}})
	}))
	defer srv.Close()

	_, err := client.Create(context.Background(), "Image Queue", map[string]any{"Status": "queued"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a record id")
}

func TestUpdateChunksLargeBatches(t *testing.T) {
	var batches [][]FieldUpdate

	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)

		var body struct {
			Records []FieldUpdate `json:"records"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		batches = append(batches, body.Records)

		json.NewEncoder(w).Encode(map[string]any{"records": []any{}})
	}))
	defer srv.Close()

	updates := make([]FieldUpdate, 23)
	for i := range updates {
		updates[i] = FieldUpdate{ID: "rec", Fields: map[string]any{"Priority": i + 1}}
	}

	require.NoError(t, client.Update(context.Background(), "Image Queue", updates))

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 3)
}

func TestAPIErrorCarriesRemoteMessage(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "INVALID_VALUE_FOR_COLUMN",
				"message": "Priority must be a number",
			},
		})
	}))
	defer srv.Close()

	_, err := client.Create(context.Background(), "Image Queue", map[string]any{"Priority": "x"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "INVALID_VALUE_FOR_COLUMN", apiErr.Type)
	assert.Equal(t, "Priority must be a number", apiErr.Message)
}

func TestEscapeFormulaString(t *testing.T) {
	assert.Equal(t, `o\'brien@example.com`, EscapeFormulaString("o'brien@example.com"))
	assert.Equal(t, "plain", EscapeFormulaString("plain"))
}
