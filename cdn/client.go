// Package cdn provides a client for the media CDN's unsigned upload API.
package cdn

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"postframe/queue-api/config"
	"postframe/queue-api/model"
)

// Upload waits this long before the request is abandoned. This is the
// only hard timeout on an outbound call in the whole request path.
const uploadTimeout = 120 * time.Second

type Client struct {
	HTTP         *http.Client
	Endpoint     string
	CloudName    string
	APIKey       string
	UploadPreset string
}

func New(cfg *config.Config) *Client {
	return &Client{
		HTTP:         &http.Client{Timeout: uploadTimeout},
		Endpoint:     strings.TrimSuffix(cfg.CDN.Endpoint, "/"),
		CloudName:    cfg.CDN.CloudName,
		APIKey:       cfg.CDN.APIKey,
		UploadPreset: cfg.CDN.UploadPreset,
	}
}

type uploadBody struct {
	File             string `json:"file"`
	UploadPreset     string `json:"upload_preset"`
	PublicID         string `json:"public_id"`
	FilenameOverride string `json:"filename_override,omitempty"`
	APIKey           string `json:"api_key,omitempty"`
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Bytes     int64  `json:"bytes"`
	Format    string `json:"format"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the processed image as a base64 data URI. Failures past
// request construction come back as *Error with a Kind set.
func (c *Client) Upload(ctx context.Context, in *model.UploadInput) (*model.UploadResult, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s",
		in.ContentType, base64.StdEncoding.EncodeToString(in.Data))

	raw, err := json.Marshal(uploadBody{
		File:             dataURI,
		UploadPreset:     c.UploadPreset,
		PublicID:         in.PublicID,
		FilenameOverride: in.FileName,
		APIKey:           c.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload body, %w", err)
	}

	u := fmt.Sprintf("%s/%s/image/upload", c.Endpoint, c.CloudName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request, %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	var parsed uploadResponse
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode upload response, %w", err)
		}

		if parsed.SecureURL == "" {
			return nil, errors.New("upload response is missing a secure URL")
		}

		return &model.UploadResult{
			URL:    parsed.SecureURL,
			Bytes:  parsed.Bytes,
			Format: parsed.Format,
		}, nil
	}

	kind := KindHTTP5xx
	if resp.StatusCode < 500 {
		kind = KindHTTP4xx
	}

	msg := http.StatusText(resp.StatusCode)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}

	return nil, &Error{
		Kind:   kind,
		Status: resp.StatusCode,
		Err:    errors.New(msg),
	}
}
