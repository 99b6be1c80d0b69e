package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Fast2SMS sends through the Fast2SMS bulk v2 API (API key header).
type Fast2SMS struct {
	client   *http.Client
	endpoint string
	apiKey   string
	senderID string
}

func NewFast2SMS(client *http.Client, apiKey, senderID string) *Fast2SMS {
	return &Fast2SMS{
		client:   client,
		endpoint: "https://www.fast2sms.com/dev/bulkV2",
		apiKey:   apiKey,
		senderID: senderID,
	}
}

func (p *Fast2SMS) Name() string { return "fast2sms" }

func (p *Fast2SMS) Send(ctx context.Context, phone, message string) (string, error) {
	form := url.Values{}
	form.Set("route", "q")
	form.Set("sender_id", p.senderID)
	form.Set("message", message)
	form.Set("numbers", strings.TrimPrefix(phone, "+91"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("authorization", p.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body struct {
		Return    bool     `json:"return"`
		RequestID string   `json:"request_id"`
		Message   []string `json:"message"`
	}
	if err := doJSON(p.client, req, &body); err != nil {
		return "", err
	}
	if !body.Return {
		return "", fmt.Errorf("fast2sms rejected message: %s", strings.Join(body.Message, "; "))
	}
	return body.RequestID, nil
}

// MSG91 sends through the MSG91 flow API (authkey header).
type MSG91 struct {
	client   *http.Client
	endpoint string
	authKey  string
	senderID string
}

func NewMSG91(client *http.Client, authKey, senderID string) *MSG91 {
	return &MSG91{
		client:   client,
		endpoint: "https://api.msg91.com/api/v2/sendsms",
		authKey:  authKey,
		senderID: senderID,
	}
}

func (p *MSG91) Name() string { return "msg91" }

func (p *MSG91) Send(ctx context.Context, phone, message string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"sender": p.senderID,
		"route":  "4",
		"sms": []map[string]any{
			{"message": message, "to": []string{phone}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("authkey", p.authKey)
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	}
	if err := doJSON(p.client, req, &body); err != nil {
		return "", err
	}
	if body.Type != "success" {
		return "", fmt.Errorf("msg91 rejected message: %s", body.Message)
	}
	return body.RequestID, nil
}

// Twilio sends through the Twilio Messages API (basic auth).
type Twilio struct {
	client     *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
}

func NewTwilio(client *http.Client, accountSID, authToken, from string) *Twilio {
	return &Twilio{
		client:     client,
		baseURL:    "https://api.twilio.com",
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
	}
}

func (p *Twilio) Name() string { return "twilio" }

func (p *Twilio) Send(ctx context.Context, phone, message string) (string, error) {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", p.from)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.baseURL, p.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body struct {
		SID          string `json:"sid"`
		ErrorMessage string `json:"error_message"`
	}
	if err := doJSON(p.client, req, &body); err != nil {
		return "", err
	}
	if body.SID == "" {
		return "", fmt.Errorf("twilio rejected message: %s", body.ErrorMessage)
	}
	return body.SID, nil
}

func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
