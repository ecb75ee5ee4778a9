package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGraphAPIBaseURL = "https://graph.facebook.com/v18.0"

// WhatsAppSender delivers patient-facing messages through the WhatsApp
// Cloud API. Appointment reminders go out as pre-approved template
// messages; free-form text only works inside an open conversation window.
type WhatsAppSender struct {
	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
	baseURL       string
}

// WhatsAppOptions configures the sender. BaseURL is overridable for tests.
type WhatsAppOptions struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	HTTPClient    *http.Client
}

// NewWhatsAppSender creates a WhatsApp Cloud API sender
func NewWhatsAppSender(opts WhatsAppOptions) (*WhatsAppSender, error) {
	if opts.AccessToken == "" || opts.PhoneNumberID == "" {
		return nil, fmt.Errorf("whatsapp access token and phone number id are required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGraphAPIBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &WhatsAppSender{
		accessToken:   opts.AccessToken,
		phoneNumberID: opts.PhoneNumberID,
		httpClient:    opts.HTTPClient,
		baseURL:       opts.BaseURL,
	}, nil
}

type templateMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         templateBody `json:"template"`
}

type templateBody struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []templateComponent `json:"components,omitempty"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

type apiResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Messages         []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendTemplate sends a pre-approved template message and returns the
// WhatsApp message id
func (w *WhatsAppSender) SendTemplate(ctx context.Context, to, templateName, languageCode string, parameters []string) (string, error) {
	var components []templateComponent
	if len(parameters) > 0 {
		params := make([]templateParameter, len(parameters))
		for i, param := range parameters {
			params[i] = templateParameter{Type: "text", Text: param}
		}
		components = append(components, templateComponent{
			Type:       "body",
			Parameters: params,
		})
	}

	message := templateMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "template",
		Template: templateBody{
			Name:       templateName,
			Language:   templateLanguage{Code: languageCode},
			Components: components,
		},
	}

	return w.send(ctx, message)
}

// SendText sends a free-form text message
func (w *WhatsAppSender) SendText(ctx context.Context, to, body string) (string, error) {
	message := textMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
	}
	message.Text.PreviewURL = false
	message.Text.Body = body

	return w.send(ctx, message)
}

func (w *WhatsAppSender) send(ctx context.Context, message any) (string, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whatsapp api error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(parsed.Messages) == 0 {
		return "", fmt.Errorf("no message id in response")
	}
	return parsed.Messages[0].ID, nil
}
