package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

// Client talks to the SMS gateway used for follow-up reminders. Delivery is
// best-effort everywhere it is called.
type Client struct {
	baseURL  string
	apiKey   string
	senderID string
	http     *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:  os.Getenv("SMS_GATEWAY_URL"),
		apiKey:   os.Getenv("SMS_API_KEY"),
		senderID: os.Getenv("SMS_SENDER_ID"),
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *Client) SendSMS(input SendSMSInput) error {
	if !c.Configured() {
		return fmt.Errorf("sms gateway not configured")
	}

	payload := sendRequest{
		Sender:  c.senderID,
		To:      NormalizeMSISDN(input.To),
		Message: input.Message,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal sms payload: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

var msisdnNonDigits = regexp.MustCompile(`\D`)

// NormalizeMSISDN canonicalizes an indian mobile number for the gateway:
// strip punctuation, drop a leading zero, prepend the 91 country code for
// bare 10-digit numbers. Dedup matching deliberately does NOT use this.
func NormalizeMSISDN(mobile string) string {
	digits := msisdnNonDigits.ReplaceAllString(mobile, "")
	digits = strings.TrimPrefix(digits, "0")
	if len(digits) == 10 {
		return "91" + digits
	}
	return digits
}
