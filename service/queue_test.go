package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"postframe/queue-api/model"
	"postframe/queue-api/recordstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var bankIDFormula = regexp.MustCompile(`\{Bank ID\} = '([^']*)'`)

// fakeStore is an in-memory stand-in for the remote record store,
// serving just enough of its REST surface for the queue tests.
type fakeStore struct {
	mu      sync.Mutex
	records []recordstore.Record
	nextID  int

	creates []map[string]any
	patches [][]recordstore.FieldUpdate
	deletes []string
}

func (f *fakeStore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			f.list(w, r)
		case http.MethodPost:
			f.create(w, r)
		case http.MethodPatch:
			f.patch(w, r)
		case http.MethodDelete:
			parts := strings.Split(r.URL.Path, "/")
			f.deletes = append(f.deletes, parts[len(parts)-1])
			json.NewEncoder(w).Encode(map[string]any{"deleted": true})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func (f *fakeStore) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	out := make([]recordstore.Record, 0, len(f.records))
	for _, rec := range f.records {
		if m := bankIDFormula.FindStringSubmatch(q.Get("filterByFormula")); m != nil {
			if rec.Fields["Bank ID"] != m[1] {
				continue
			}
		}
		out = append(out, rec)
	}

	if q.Get("sort[0][field]") == "Priority" {
		desc := q.Get("sort[0][direction]") == "desc"
		sort.Slice(out, func(i, j int) bool {
			a, _ := out[i].Fields["Priority"].(float64)
			b, _ := out[j].Fields["Priority"].(float64)
			if desc {
				return a > b
			}
			return a < b
		})
	}

	if max, _ := strconv.Atoi(q.Get("maxRecords")); max > 0 && len(out) > max {
		out = out[:max]
	}

	json.NewEncoder(w).Encode(map[string]any{"records": out})
}

func (f *fakeStore) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	f.creates = append(f.creates, body.Fields)
	f.nextID++

	rec := recordstore.Record{
		ID:     fmt.Sprintf("rec%03d", f.nextID),
		Fields: body.Fields,
	}
	f.records = append(f.records, rec)

	json.NewEncoder(w).Encode(rec)
}

func (f *fakeStore) patch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Records []recordstore.FieldUpdate `json:"records"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	f.patches = append(f.patches, body.Records)

	json.NewEncoder(w).Encode(map[string]any{"records": []any{}})
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.patches) + len(f.deletes)
}

func (f *fakeStore) seed(email string, priority int, extra map[string]any) {
	f.nextID++

	fields := map[string]any{
		"User Email": email,
		"Image URL":  fmt.Sprintf("https://cdn.example.com/img%d.jpg", f.nextID),
		"Status":     "queued",
		"Priority":   float64(priority),
	}
	for k, v := range extra {
		fields[k] = v
	}

	f.records = append(f.records, recordstore.Record{
		ID:     fmt.Sprintf("rec%03d", f.nextID),
		Fields: fields,
	})
}

func testQueueService(t *testing.T) (*QueueService, *fakeStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	require.NoError(t, db.Create(&model.User{
		ID:       "usr_verified",
		Email:    "ok@example.com",
		Verified: true,
	}).Error)
	require.NoError(t, db.Create(&model.User{
		ID:    "usr_pending",
		Email: "pending@example.com",
	}).Error)

	store := &fakeStore{}
	srv := httptest.NewServer(store.handler())
	t.Cleanup(srv.Close)

	client := &recordstore.Client{
		HTTP:    srv.Client(),
		BaseURL: srv.URL,
		APIKey:  "test-key",
		BaseID:  "appTest",
	}

	return NewQueueService(db,
		recordstore.NewQueueTable(client, "Image Queue"),
		recordstore.NewNotificationTable(client, "Notifications"),
	), store
}

func testImage() model.ImageData {
	return model.ImageData{
		URL:  "https://cdn.example.com/new.jpg",
		Name: "new.jpg",
		Size: 1234,
	}
}

func TestRegisterAssignsNextPriority(t *testing.T) {
	svc, store := testQueueService(t)
	for p := 1; p <= 3; p++ {
		store.seed("ok@example.com", p, nil)
	}

	item, err := svc.Register(context.Background(), "ok@example.com", testImage())
	require.NoError(t, err)

	assert.Equal(t, 4, item.Priority)
	assert.Equal(t, "queued", item.Status)
	assert.NotEmpty(t, item.UploadDate)
}

func TestRegisterEmptyQueueStartsAtOne(t *testing.T) {
	svc, _ := testQueueService(t)

	item, err := svc.Register(context.Background(), "ok@example.com", testImage())
	require.NoError(t, err)

	assert.Equal(t, 1, item.Priority)
}

func TestRegisterCreatesNotification(t *testing.T) {
	svc, store := testQueueService(t)

	_, err := svc.Register(context.Background(), "ok@example.com", testImage())
	require.NoError(t, err)

	require.Len(t, store.creates, 2)
	assert.Equal(t, "queue_add", store.creates[1]["Kind"])
	assert.Contains(t, store.creates[1]["Message"], "new.jpg")
}

func TestRegisterRejectsUnverifiedUser(t *testing.T) {
	svc, store := testQueueService(t)

	_, err := svc.Register(context.Background(), "pending@example.com", testImage())
	assert.ErrorIs(t, err, ErrUserNotVerified)
	assert.Zero(t, store.writeCount())
}

func TestRegisterRejectsUnknownUser(t *testing.T) {
	svc, store := testQueueService(t)

	_, err := svc.Register(context.Background(), "ghost@example.com", testImage())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, store.writeCount())
}

func TestReorderRewritesPrioritiesByPosition(t *testing.T) {
	svc, store := testQueueService(t)

	err := svc.Reorder(context.Background(), "ok@example.com", []string{"recC", "recA", "recB"})
	require.NoError(t, err)

	require.Len(t, store.patches, 1)
	assert.Equal(t, []recordstore.FieldUpdate{
		{ID: "recC", Fields: map[string]any{"Priority": float64(1)}},
		{ID: "recA", Fields: map[string]any{"Priority": float64(2)}},
		{ID: "recB", Fields: map[string]any{"Priority": float64(3)}},
	}, store.patches[0])
}

func TestPromoteSetsPublishSlotAndExperienceType(t *testing.T) {
	svc, store := testQueueService(t)

	item, err := svc.Promote(context.Background(), PromoteRequest{
		Email:         "ok@example.com",
		BankID:        "bank_42",
		PublishDate:   "2026-09-01",
		PublishTime:   "14:30",
		Image:         testImage(),
		WorkspaceCode: "Studio",
	})
	require.NoError(t, err)

	assert.Equal(t, "bank_42", item.BankID)
	assert.Equal(t, "2026-09-01", item.PublishDate)
	assert.Equal(t, "14:30", item.PublishTime)
	assert.Equal(t, "recWkExpStudio01", item.ExperienceType)

	require.NotEmpty(t, store.creates)
	assert.Equal(t, "recWkExpStudio01", store.creates[0]["Experience Type"])
}

func TestPromoteUnknownWorkspaceOmitsExperienceType(t *testing.T) {
	svc, store := testQueueService(t)

	_, err := svc.Promote(context.Background(), PromoteRequest{
		Email:         "ok@example.com",
		BankID:        "bank_43",
		PublishDate:   "2026-09-01",
		PublishTime:   "14:30",
		Image:         testImage(),
		WorkspaceCode: "mystery",
	})
	require.NoError(t, err)

	require.NotEmpty(t, store.creates)
	_, present := store.creates[0]["Experience Type"]
	assert.False(t, present)
}

func TestPromoteIsIdempotentPerBankID(t *testing.T) {
	svc, store := testQueueService(t)
	store.seed("ok@example.com", 1, map[string]any{"Bank ID": "bank_42"})

	item, err := svc.Promote(context.Background(), PromoteRequest{
		Email:  "ok@example.com",
		BankID: "bank_42",
		Image:  testImage(),
	})
	require.NoError(t, err)

	assert.Equal(t, "rec001", item.ID)
	assert.Empty(t, store.creates)
}

func TestDeleteRemovesRecord(t *testing.T) {
	svc, store := testQueueService(t)

	require.NoError(t, svc.Delete(context.Background(), "rec123"))
	assert.Equal(t, []string{"rec123"}, store.deletes)
}

func TestExperienceTypeFor(t *testing.T) {
	assert.Equal(t, "recWkExpStudio01", ExperienceTypeFor("studio"))
	assert.Equal(t, "recWkExpStudio01", ExperienceTypeFor(" STUDIO "))
	assert.Equal(t, "recWkExpAgency04", ExperienceTypeFor("Agency"))
	assert.Equal(t, "", ExperienceTypeFor("mystery"))
	assert.Equal(t, "", ExperienceTypeFor(""))
}
