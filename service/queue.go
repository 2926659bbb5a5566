package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postframe/queue-api/model"
	"postframe/queue-api/recordstore"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserNotVerified = errors.New("user not verified")
)

// Workspace codes map to the remote store's experience-type reference
// records. Unknown codes resolve to "" rather than erroring.
var experienceTypes = map[string]string{
	"studio":  "recWkExpStudio01",
	"gallery": "recWkExpGaller02",
	"creator": "recWkExpCreatr03",
	"agency":  "recWkExpAgency04",
}

// ExperienceTypeFor resolves a workspace code case-insensitively.
func ExperienceTypeFor(workspaceCode string) string {
	return experienceTypes[strings.ToLower(strings.TrimSpace(workspaceCode))]
}

// PromoteRequest moves an item out of the client-local bank into the
// remote queue. BankID doubles as the idempotency key of the promotion.
type PromoteRequest struct {
	Email         string
	BankID        string
	PublishDate   string
	PublishTime   string
	Image         model.ImageData
	WorkspaceCode string
}

// QueueService owns every mutation of a user's publish queue.
type QueueService struct {
	DB     *gorm.DB
	Queue  *recordstore.QueueTable
	Notifs *recordstore.NotificationTable
}

func NewQueueService(db *gorm.DB, queue *recordstore.QueueTable, notifs *recordstore.NotificationTable) *QueueService {
	return &QueueService{DB: db, Queue: queue, Notifs: notifs}
}

// Register creates one queue record for a verified user, assigning the
// next dense priority. The highest-then-plus-one read is not guarded
// against concurrent registrations for the same user; two racing calls
// can end up with the same priority.
func (s *QueueService) Register(ctx context.Context, email string, img model.ImageData) (*recordstore.QueueItem, error) {
	if err := s.requireVerified(email); err != nil {
		return nil, err
	}

	return s.create(ctx, email, img, recordstore.NewQueueItem{})
}

// Promote registers a banked image with its scheduled publish slot. If
// a queue record already carries the bank id, that record is returned
// instead of a duplicate being created.
func (s *QueueService) Promote(ctx context.Context, req PromoteRequest) (*recordstore.QueueItem, error) {
	if err := s.requireVerified(req.Email); err != nil {
		return nil, err
	}

	existing, err := s.Queue.FindByBankID(ctx, req.Email, req.BankID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	return s.create(ctx, req.Email, req.Image, recordstore.NewQueueItem{
		PublishDate:    req.PublishDate,
		PublishTime:    req.PublishTime,
		ExperienceType: ExperienceTypeFor(req.WorkspaceCode),
		BankID:         req.BankID,
	})
}

func (s *QueueService) create(ctx context.Context, email string, img model.ImageData, extra recordstore.NewQueueItem) (*recordstore.QueueItem, error) {
	highest, err := s.Queue.HighestPriority(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to read current queue order, %w", err)
	}

	extra.UserEmail = email
	extra.ImageURL = img.URL
	extra.FileName = img.Name
	extra.FileSize = img.Size
	extra.Notes = img.Notes
	extra.Priority = highest + 1

	item, err := s.Queue.Create(ctx, extra)
	if err != nil {
		return nil, err
	}

	if err := s.Notifs.Create(ctx, email, "queue_add",
		fmt.Sprintf("%s was added to your queue", item.FileName)); err != nil {
		zap.L().Warn("Failed to create notification record", zap.Error(err))
	}

	return item, nil
}

// Reorder rewrites every listed record's priority to its position in
// newOrder. Ids not owned by email are updated all the same; the remote
// store has no ownership concept and none is enforced here.
func (s *QueueService) Reorder(ctx context.Context, email string, newOrder []string) error {
	_ = email
	return s.Queue.SetPriorities(ctx, newOrder)
}

// List returns a user's queue in priority order.
func (s *QueueService) List(ctx context.Context, email string) ([]recordstore.QueueItem, error) {
	return s.Queue.ListForUser(ctx, email)
}

// Delete removes one queue record by id.
func (s *QueueService) Delete(ctx context.Context, recordID string) error {
	return s.Queue.Delete(ctx, recordID)
}

func (s *QueueService) requireVerified(email string) error {
	var user model.User

	err := s.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user, %w", err)
	}

	if !user.Verified {
		return ErrUserNotVerified
	}

	return nil
}
