package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider is one configured WhatsApp channel. Send returns the
// provider-assigned message id on success.
type Provider interface {
	Name() string
	Send(ctx context.Context, m Message) (messageID string, err error)
}

const defaultSendTimeout = 10 * time.Second

// TwilioConfig holds Twilio WhatsApp channel credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string // e.g. "+14155238886"
	BaseURL    string // override for tests; empty means api.twilio.com
	Timeout    time.Duration
}

func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// TwilioProvider sends messages through the Twilio Messages API.
type TwilioProvider struct {
	cfg    TwilioConfig
	client *http.Client
}

func NewTwilioProvider(cfg TwilioConfig) *TwilioProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	return &TwilioProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *TwilioProvider) Name() string { return "twilio" }

type twilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Message      string `json:"message"` // error payloads use "message"
}

func (p *TwilioProvider) Send(ctx context.Context, m Message) (string, error) {
	form := url.Values{}
	form.Set("To", "whatsapp:"+m.To)
	form.Set("From", "whatsapp:"+p.cfg.FromNumber)
	form.Set("Body", m.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.cfg.BaseURL, p.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.AccountSID, p.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out twilioMessageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("twilio: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Message
		if msg == "" {
			msg = out.ErrorMessage
		}
		return "", fmt.Errorf("twilio: status %d: %s", resp.StatusCode, msg)
	}
	if out.Status == "failed" || out.Status == "undelivered" {
		return "", fmt.Errorf("twilio: message %s status %s: %s", out.SID, out.Status, out.ErrorMessage)
	}

	return out.SID, nil
}

// MetaConfig holds Meta WhatsApp Cloud API credentials.
type MetaConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string // override for tests; empty means graph.facebook.com
	Timeout       time.Duration
}

func (c MetaConfig) Configured() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// MetaProvider sends messages through the WhatsApp Cloud API.
type MetaProvider struct {
	cfg    MetaConfig
	client *http.Client
}

func NewMetaProvider(cfg MetaConfig) *MetaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com/v19.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	return &MetaProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *MetaProvider) Name() string { return "meta" }

type metaSendRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             metaSendText `json:"text"`
}

type metaSendText struct {
	Body string `json:"body"`
}

type metaSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (p *MetaProvider) Send(ctx context.Context, m Message) (string, error) {
	payload, err := json.Marshal(metaSendRequest{
		MessagingProduct: "whatsapp",
		To:               strings.TrimPrefix(m.To, "+"),
		Type:             "text",
		Text:             metaSendText{Body: m.Body},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/messages", p.cfg.BaseURL, p.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out metaSendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("meta: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil {
			return "", fmt.Errorf("meta: status %d code %d: %s", resp.StatusCode, out.Error.Code, out.Error.Message)
		}
		return "", fmt.Errorf("meta: status %d", resp.StatusCode)
	}
	if len(out.Messages) == 0 {
		return "", fmt.Errorf("meta: response carried no message id")
	}

	return out.Messages[0].ID, nil
}
