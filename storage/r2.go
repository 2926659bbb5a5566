// Package storage provides an S3-compatible image store (Cloudflare R2)
// as an alternative to the CDN upload API.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	appcfg "postframe/queue-api/config"
	"postframe/queue-api/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Objects above this size go through the multipart uploader.
const multipartLimit = 50 << 20

type R2Client struct {
	C         *s3.Client
	Bucket    *string
	publicURL string
}

func NewR2(appCfg *appcfg.Config) (*R2Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			appCfg.S3.AccessKeyID,
			appCfg.S3.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(appCfg.S3.Bucket)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", appCfg.S3.AccountID))
		o.Region = "auto"
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", appCfg.S3.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &R2Client{
		C:         client,
		Bucket:    bucket,
		publicURL: fmt.Sprintf("%s/media", appCfg.Host.PublicURL),
	}, nil
}

// Upload stores the processed image under its public ID. The SDK's own
// retryer handles transient failures on this path.
func (r *R2Client) Upload(ctx context.Context, in *model.UploadInput) (*model.UploadResult, error) {
	key := in.PublicID + ".jpg"
	size := int64(len(in.Data))

	input := &s3.PutObjectInput{
		Bucket:        r.Bucket,
		Key:           aws.String(key),
		Body:          bytes.NewReader(in.Data),
		ContentType:   aws.String(in.ContentType),
		ContentLength: aws.Int64(size),
	}

	var err error
	if size > multipartLimit {
		u := manager.NewUploader(r.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})
		_, err = u.Upload(ctx, input)
	} else {
		_, err = r.C.PutObject(ctx, input)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to S3, %w", err)
	}

	return &model.UploadResult{
		URL:    r.publicURL + "/" + key,
		Bytes:  size,
		Format: "jpg",
	}, nil
}
