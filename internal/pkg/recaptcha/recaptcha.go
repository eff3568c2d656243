package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Client reCAPTCHA 服务端校验客户端。
// secret 为空时 Enabled 返回 false，调用方应跳过校验。
type Client struct {
	secret    string
	verifyURL string
	http      *http.Client
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

func NewClient(secret, verifyURL string) *Client {
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	return &Client{
		secret:    secret,
		verifyURL: verifyURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled 是否配置了密钥
func (c *Client) Enabled() bool {
	return c != nil && c.secret != ""
}

// Verify 校验客户端提交的 reCAPTCHA token
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if !c.Enabled() {
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("recaptcha verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode recaptcha response: %w", err)
	}

	return result.Success, nil
}
