package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type StorageConfig struct {
	BaseURL      string
	ServiceKey   string
	SlipBucket   string
	SignedURLTTL time.Duration
	Timeout      time.Duration
}

// StorageClient talks to a Supabase Storage compatible object API
type StorageClient struct {
	baseURL    string
	serviceKey string
	bucket     string
	signedTTL  time.Duration
	httpClient *http.Client
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

func NewStorageClient(cfg StorageConfig) *StorageClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.SignedURLTTL == 0 {
		cfg.SignedURLTTL = 30 * 24 * time.Hour
	}
	if cfg.SlipBucket == "" {
		cfg.SlipBucket = "payment-slips"
	}

	return &StorageClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.SlipBucket,
		signedTTL:  cfg.SignedURLTTL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// UploadSlip stores the object and returns a time-limited signed URL to it
func (sc *StorageClient) UploadSlip(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := sc.upload(ctx, path, data, contentType); err != nil {
		return "", err
	}
	return sc.signedURL(ctx, path)
}

func (sc *StorageClient) upload(ctx context.Context, path string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", sc.baseURL, sc.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	sc.authorize(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("upload returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

func (sc *StorageClient) signedURL(ctx context.Context, path string) (string, error) {
	jsonBody, err := json.Marshal(signRequest{ExpiresIn: int(sc.signedTTL.Seconds())})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", sc.baseURL, sc.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	sc.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to sign object url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result signResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.SignedURL == "" {
		return "", fmt.Errorf("empty signed url")
	}

	return sc.baseURL + "/storage/v1" + result.SignedURL, nil
}

func (sc *StorageClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+sc.serviceKey)
	req.Header.Set("apikey", sc.serviceKey)
}
