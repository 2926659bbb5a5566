package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"postframe/queue-api/model"
	"postframe/queue-api/util"

	"go.uber.org/zap"
)

const (
	uploadAttempts  = 3
	uploadBaseDelay = 2 * time.Second
)

// ErrBadImage marks transcode failures so handlers can tell a broken
// upload apart from a remote storage failure.
var ErrBadImage = errors.New("invalid image")

// Uploader is whatever stores the processed image remotely. Both the
// CDN client and the R2 client satisfy it.
type Uploader interface {
	Upload(ctx context.Context, in *model.UploadInput) (*model.UploadResult, error)
}

// UploadOutcome is the handler-facing result of a completed pipeline run.
type UploadOutcome struct {
	ImageURL          string `json:"imageUrl"`
	OriginalFileName  string `json:"originalFileName"`
	ProcessedFileName string `json:"processedFileName"`
	OriginalFileSize  int64  `json:"originalFileSize"`
	ProcessedFileSize int64  `json:"processedFileSize"`
	ProcessedFileType string `json:"processedFileType"`
	CompressionRatio  int    `json:"compressionRatio"`
}

// UploadPipeline transcodes a validated upload and pushes it to remote
// storage with bounded retry.
type UploadPipeline struct {
	Store    Uploader
	WarnSize int64

	// Overridable for tests
	Attempts  int
	BaseDelay time.Duration
	Sleep     func(time.Duration)
}

func NewUploadPipeline(store Uploader, warnSize int64) *UploadPipeline {
	return &UploadPipeline{
		Store:     store,
		WarnSize:  warnSize,
		Attempts:  uploadAttempts,
		BaseDelay: uploadBaseDelay,
		Sleep:     time.Sleep,
	}
}

// Run transcodes data and uploads it. A transcode failure is terminal
// and never retried; only the remote upload goes through the retry
// policy. Failed attempts before a final success can leave orphaned
// objects remotely, there is no compensation step.
func (p *UploadPipeline) Run(ctx context.Context, fileName string, data []byte) (*UploadOutcome, error) {
	if int64(len(data)) > p.WarnSize {
		zap.L().Warn("Oversized upload accepted",
			zap.String("file", fileName),
			zap.Int("size", len(data)))
	}

	processed, err := Transcode(data)
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrBadImage, err)
	}

	base := util.SanitizeFileName(fileName)
	processedName := base + ".jpg"
	publicID := fmt.Sprintf("%s_%d_%s", base, time.Now().UnixMilli(), util.RandStr(6))

	res, err := p.upload(ctx, &model.UploadInput{
		Data:        processed,
		ContentType: "image/jpeg",
		PublicID:    publicID,
		FileName:    processedName,
	})
	if err != nil {
		return nil, err
	}

	return &UploadOutcome{
		ImageURL:          res.URL,
		OriginalFileName:  fileName,
		ProcessedFileName: processedName,
		OriginalFileSize:  int64(len(data)),
		ProcessedFileSize: int64(len(processed)),
		ProcessedFileType: "jpg",
		CompressionRatio:  CompressionRatio(int64(len(data)), int64(len(processed))),
	}, nil
}

func (p *UploadPipeline) upload(ctx context.Context, in *model.UploadInput) (*model.UploadResult, error) {
	delay := p.BaseDelay

	for attempt := 1; ; attempt++ {
		res, err := p.Store.Upload(ctx, in)
		if err == nil {
			return res, nil
		}

		if attempt >= p.Attempts || !IsTransient(err) {
			return nil, err
		}

		zap.L().Warn("Upload attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))

		p.Sleep(delay)
		delay *= 2
	}
}

// IsTransient reports whether the transport layer classified the error
// as worth retrying.
func IsTransient(err error) bool {
	var t interface{ Transient() bool }
	return errors.As(err, &t) && t.Transient()
}

// CompressionRatio is the percentage of bytes saved by the transcode,
// rounded to the nearest integer. Negative when the output grew.
func CompressionRatio(original, processed int64) int {
	if original <= 0 {
		return 0
	}

	return int(math.Round((1 - float64(processed)/float64(original)) * 100))
}
