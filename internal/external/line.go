package external

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HeaderLineSignature carries the webhook body HMAC
const HeaderLineSignature = "X-Line-Signature"

// maxContentSize caps downloaded message content (slip images)
const maxContentSize = 10 << 20

type LineConfig struct {
	APIBaseURL    string
	DataBaseURL   string
	ChannelSecret string
	AccessToken   string
	Timeout       time.Duration
}

type LineClient struct {
	apiBaseURL    string
	dataBaseURL   string
	channelSecret []byte
	accessToken   string
	httpClient    *http.Client
}

// LineMessage is an outgoing text message
type LineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextMessages builds text messages for push and reply
func TextMessages(texts ...string) []LineMessage {
	messages := make([]LineMessage, len(texts))
	for i, t := range texts {
		messages[i] = LineMessage{Type: "text", Text: t}
	}
	return messages
}

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []LineMessage `json:"messages"`
}

type lineReplyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []LineMessage `json:"messages"`
}

// WebhookPayload is the body LINE posts to the webhook
type WebhookPayload struct {
	Destination string         `json:"destination"`
	Events      []WebhookEvent `json:"events"`
}

type WebhookEvent struct {
	Type       string         `json:"type"`
	ReplyToken string         `json:"replyToken"`
	Timestamp  int64          `json:"timestamp"`
	Source     WebhookSource  `json:"source"`
	Message    WebhookMessage `json:"message"`
}

type WebhookSource struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type WebhookMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewLineClient(cfg LineConfig) *LineClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.line.me"
	}
	if cfg.DataBaseURL == "" {
		cfg.DataBaseURL = "https://api-data.line.me"
	}

	return &LineClient{
		apiBaseURL:    cfg.APIBaseURL,
		dataBaseURL:   cfg.DataBaseURL,
		channelSecret: []byte(cfg.ChannelSecret),
		accessToken:   cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// VerifySignature checks the base64 HMAC-SHA256 of body against signature
func (lc *LineClient) VerifySignature(body []byte, signature string) bool {
	if signature == "" || len(lc.channelSecret) == 0 {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, lc.channelSecret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}

// Push sends text to a user outside of a reply context
func (lc *LineClient) Push(ctx context.Context, to, text string) error {
	return lc.post(ctx, "/v2/bot/message/push", linePushRequest{To: to, Messages: TextMessages(text)})
}

// Reply answers a webhook event using its reply token
func (lc *LineClient) Reply(ctx context.Context, replyToken string, messages []LineMessage) error {
	return lc.post(ctx, "/v2/bot/message/reply", lineReplyRequest{ReplyToken: replyToken, Messages: messages})
}

// GetContent downloads the binary content of a message, e.g. an image
func (lc *LineClient) GetContent(ctx context.Context, messageID string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/v2/bot/message/%s/content", lc.dataBaseURL, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+lc.accessToken)

	resp, err := lc.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read content: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}

func (lc *LineClient) post(ctx context.Context, path string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lc.apiBaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+lc.accessToken)

	resp, err := lc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call LINE API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("LINE API %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	return nil
}
