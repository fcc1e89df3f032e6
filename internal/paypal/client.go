package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"hospital-app-server/internal/config"
)

// Client is the payment-gateway surface the services depend on. It covers
// the create-intent / execute pair of the PayPal Payments API; the approval
// redirect in between happens entirely on the gateway side.
type Client interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)
	ExecutePayment(ctx context.Context, paymentID, payerID string) (*ExecutePaymentResult, error)
}

// CreatePaymentRequest carries everything the gateway needs to open an intent.
type CreatePaymentRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
}

// CreatePaymentResult is the gateway's answer to a create-intent call.
type CreatePaymentResult struct {
	PaymentID   string
	ApprovalURL string
	State       string
}

// ExecutePaymentResult is the gateway's answer to an execute call.
type ExecutePaymentResult struct {
	PaymentID      string
	State          string // "approved" on success
	TransactionID  string // sale id from the first related resource
	PayerEmail     string
	PayerFirstName string
	PayerLastName  string
}

// Approved reports whether the gateway considers the execution successful.
func (r *ExecutePaymentResult) Approved() bool {
	return r.State == "approved"
}

type clientImpl struct {
	httpClient   *http.Client
	baseAPIURL   string
	clientID     string
	clientSecret string
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg *config.PayPalConfig) Client {
	return &clientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseAPIURL:   cfg.BaseAPIURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

func (c *clientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseAPIURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("paypal returned empty access token")
	}

	return res.AccessToken, nil
}

type paypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type paypalPaymentResult struct {
	ID           string       `json:"id"`
	State        string       `json:"state"`
	Links        []paypalLink `json:"links"`
	Payer        paypalPayer  `json:"payer"`
	Transactions []struct {
		RelatedResources []struct {
			Sale struct {
				ID string `json:"id"`
			} `json:"sale"`
		} `json:"related_resources"`
	} `json:"transactions"`
}

type paypalPayer struct {
	PayerInfo struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"payer_info"`
}

func (c *clientImpl) CreatePayment(ctx context.Context, reqBody CreatePaymentRequest) (*CreatePaymentResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"intent": "sale",
		"payer": map[string]string{
			"payment_method": "paypal",
		},
		"transactions": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency": reqBody.Currency,
					"total":    reqBody.Amount.StringFixed(2),
				},
				"description": reqBody.Description,
			},
		},
		"redirect_urls": map[string]string{
			"return_url": reqBody.ReturnURL,
			"cancel_url": reqBody.CancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseAPIURL+"/v1/payments/payment",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal create payment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b))
	}

	var result paypalPaymentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	approvalURL := extractApprovalURL(result.Links)
	if approvalURL == "" {
		return nil, fmt.Errorf("paypal response has no approval_url")
	}

	return &CreatePaymentResult{
		PaymentID:   result.ID,
		ApprovalURL: approvalURL,
		State:       result.State,
	}, nil
}

func (c *clientImpl) ExecutePayment(ctx context.Context, paymentID, payerID string) (*ExecutePaymentResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	body, err := json.Marshal(map[string]string{"payer_id": payerID})
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/payments/payment/%s/execute", c.baseAPIURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create execute request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal execute request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paypal execute failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var result paypalPaymentResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	out := &ExecutePaymentResult{
		PaymentID:      result.ID,
		State:          result.State,
		PayerEmail:     result.Payer.PayerInfo.Email,
		PayerFirstName: result.Payer.PayerInfo.FirstName,
		PayerLastName:  result.Payer.PayerInfo.LastName,
	}
	if len(result.Transactions) > 0 && len(result.Transactions[0].RelatedResources) > 0 {
		out.TransactionID = result.Transactions[0].RelatedResources[0].Sale.ID
	}

	return out, nil
}

func extractApprovalURL(links []paypalLink) string {
	for _, link := range links {
		if link.Rel == "approval_url" {
			return link.Href
		}
	}
	return ""
}
