package recordstore

import (
	"context"
	"fmt"
	"time"
)

// Field names of the Image Queue table as they exist remotely.
const (
	fieldUserEmail      = "User Email"
	fieldImageURL       = "Image URL"
	fieldFileName       = "File Name"
	fieldFileSize       = "File Size"
	fieldStatus         = "Status"
	fieldUploadDate     = "Upload Date"
	fieldPublishDate    = "Publish Date"
	fieldPublishTime    = "Publish Time"
	fieldPriority       = "Priority"
	fieldNotes          = "Notes"
	fieldTags           = "Tags"
	fieldExperienceType = "Experience Type"
	fieldBankID         = "Bank ID"
)

const StatusQueued = "queued"

// QueueItem is the decoded view of one queued image. The id is assigned
// remotely and immutable; Priority is rewritten wholesale on reorder.
type QueueItem struct {
	ID             string `json:"id"`
	UserEmail      string `json:"userEmail"`
	ImageURL       string `json:"imageUrl"`
	FileName       string `json:"fileName"`
	FileSize       int64  `json:"fileSize"`
	Status         string `json:"status"`
	UploadDate     string `json:"uploadDate"`
	PublishDate    string `json:"publishDate,omitempty"`
	PublishTime    string `json:"publishTime,omitempty"`
	Priority       int    `json:"priority"`
	Notes          string `json:"notes,omitempty"`
	Tags           string `json:"tags,omitempty"`
	ExperienceType string `json:"experienceType,omitempty"`
	BankID         string `json:"bankId,omitempty"`
}

// NewQueueItem carries everything needed to create a queue record.
// PublishDate/PublishTime/ExperienceType/BankID are only set on the
// bank promotion path.
type NewQueueItem struct {
	UserEmail      string
	ImageURL       string
	FileName       string
	FileSize       int64
	Priority       int
	Notes          string
	PublishDate    string
	PublishTime    string
	ExperienceType string
	BankID         string
}

type QueueTable struct {
	c    *Client
	name string
}

func NewQueueTable(c *Client, name string) *QueueTable {
	return &QueueTable{c: c, name: name}
}

func (t *QueueTable) decode(rec Record) (*QueueItem, error) {
	r := &fieldReader{table: t.name, rec: rec}

	item := &QueueItem{
		ID:             rec.ID,
		UserEmail:      r.requiredString(fieldUserEmail),
		ImageURL:       r.requiredString(fieldImageURL),
		Status:         r.requiredString(fieldStatus),
		Priority:       r.requiredInt(fieldPriority),
		FileName:       r.optionalString(fieldFileName),
		FileSize:       r.optionalInt(fieldFileSize),
		UploadDate:     r.optionalString(fieldUploadDate),
		PublishDate:    r.optionalString(fieldPublishDate),
		PublishTime:    r.optionalString(fieldPublishTime),
		Notes:          r.optionalString(fieldNotes),
		Tags:           r.optionalString(fieldTags),
		ExperienceType: r.optionalString(fieldExperienceType),
		BankID:         r.optionalString(fieldBankID),
	}
	if r.err != nil {
		return nil, r.err
	}

	return item, nil
}

func (t *QueueTable) userFilter(email string) string {
	return fmt.Sprintf("{%s} = '%s'", fieldUserEmail, EscapeFormulaString(email))
}

// ListForUser returns a user's queue ordered by ascending priority.
func (t *QueueTable) ListForUser(ctx context.Context, email string) ([]QueueItem, error) {
	recs, err := t.c.List(ctx, t.name, ListOptions{
		FilterByFormula: t.userFilter(email),
		SortField:       fieldPriority,
	})
	if err != nil {
		return nil, err
	}

	items := make([]QueueItem, 0, len(recs))
	for _, rec := range recs {
		item, err := t.decode(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, nil
}

// HighestPriority returns the user's largest priority value, or 0 when
// the user has no items yet.
func (t *QueueTable) HighestPriority(ctx context.Context, email string) (int, error) {
	recs, err := t.c.List(ctx, t.name, ListOptions{
		FilterByFormula: t.userFilter(email),
		SortField:       fieldPriority,
		SortDesc:        true,
		MaxRecords:      1,
	})
	if err != nil {
		return 0, err
	}

	if len(recs) == 0 {
		return 0, nil
	}

	item, err := t.decode(recs[0])
	if err != nil {
		return 0, err
	}

	return item.Priority, nil
}

// FindByBankID looks up a queue item created from a given bank record.
// Returns nil when none exists.
func (t *QueueTable) FindByBankID(ctx context.Context, email, bankID string) (*QueueItem, error) {
	formula := fmt.Sprintf("AND(%s, {%s} = '%s')",
		t.userFilter(email), fieldBankID, EscapeFormulaString(bankID))

	recs, err := t.c.List(ctx, t.name, ListOptions{
		FilterByFormula: formula,
		MaxRecords:      1,
	})
	if err != nil {
		return nil, err
	}

	if len(recs) == 0 {
		return nil, nil
	}

	return t.decode(recs[0])
}

// Create registers a new queue record with status "queued" and the
// current time as the upload date.
func (t *QueueTable) Create(ctx context.Context, item NewQueueItem) (*QueueItem, error) {
	fields := map[string]any{
		fieldUserEmail:  item.UserEmail,
		fieldImageURL:   item.ImageURL,
		fieldFileName:   item.FileName,
		fieldFileSize:   item.FileSize,
		fieldStatus:     StatusQueued,
		fieldUploadDate: time.Now().UTC().Format(time.RFC3339),
		fieldPriority:   item.Priority,
	}

	if item.Notes != "" {
		fields[fieldNotes] = item.Notes
	}
	if item.PublishDate != "" {
		fields[fieldPublishDate] = item.PublishDate
	}
	if item.PublishTime != "" {
		fields[fieldPublishTime] = item.PublishTime
	}
	if item.ExperienceType != "" {
		fields[fieldExperienceType] = item.ExperienceType
	}
	if item.BankID != "" {
		fields[fieldBankID] = item.BankID
	}

	rec, err := t.c.Create(ctx, t.name, fields)
	if err != nil {
		return nil, err
	}

	return t.decode(*rec)
}

// SetPriorities rewrites the priority of every listed record to its
// position in the list, starting at 1. Ids missing from the list keep
// their stale priorities.
func (t *QueueTable) SetPriorities(ctx context.Context, ids []string) error {
	updates := make([]FieldUpdate, len(ids))
	for i, id := range ids {
		updates[i] = FieldUpdate{
			ID:     id,
			Fields: map[string]any{fieldPriority: i + 1},
		}
	}

	return t.c.Update(ctx, t.name, updates)
}

// Delete removes one queue record.
func (t *QueueTable) Delete(ctx context.Context, id string) error {
	return t.c.Delete(ctx, t.name, id)
}
