package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")
	ErrPaymentNotVerified = errors.New("payment not verified by gateway")
	ErrInvalidAmount      = errors.New("invalid payment amount")
)

// codeVerified and codeAlreadyVerified are the gateway's success codes for a
// verify call. An already-verified authority is still a success for us; the
// caller's consumed flag decides whether to credit.
const (
	codeVerified        = 100
	codeAlreadyVerified = 101
)

// Client talks to a ZarinPal-style payment gateway
type Client struct {
	MerchantID  string
	RequestURL  string
	VerifyURL   string
	StartPayURL string // authority gets appended
	http        *resty.Client
}

// NewClient builds a gateway client with bounded timeout and retry. Retries
// only cover transport-level failures; a definitive gateway answer is never
// retried.
func NewClient(merchantID, requestURL, verifyURL, startPayURL string) *Client {
	httpClient := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{
		MerchantID:  merchantID,
		RequestURL:  requestURL,
		VerifyURL:   verifyURL,
		StartPayURL: startPayURL,
		http:        httpClient,
	}
}

// PaymentRequest is the body sent to the gateway to open a payment attempt
type PaymentRequest struct {
	MerchantID  string `json:"merchant_id"`
	Amount      uint   `json:"amount"`
	CallbackURL string `json:"callback_url"`
	Description string `json:"description"`
}

type requestResponse struct {
	Data struct {
		Code      int    `json:"code"`
		Authority string `json:"authority"`
		Message   string `json:"message"`
	} `json:"data"`
	Errors any `json:"errors"`
}

// CreatePayment opens a payment attempt and returns the authority token plus
// the URL the user must be redirected to.
func (g *Client) CreatePayment(amount uint, description, callbackURL string) (authority, paymentURL string, err error) {
	if amount == 0 {
		return "", "", ErrInvalidAmount
	}

	body := PaymentRequest{
		MerchantID:  g.MerchantID,
		Amount:      amount,
		CallbackURL: callbackURL,
		Description: description,
	}

	var parsed requestResponse
	resp, err := g.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post(g.RequestURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	if resp.StatusCode() != 200 || parsed.Data.Code != codeVerified || parsed.Data.Authority == "" {
		return "", "", fmt.Errorf("gateway rejected payment request: code %d %s", parsed.Data.Code, parsed.Data.Message)
	}

	return parsed.Data.Authority, g.StartPayURL + parsed.Data.Authority, nil
}

// VerifyResult is the gateway's answer to a successful verification
type VerifyResult struct {
	RefID           string
	CardPan         string
	AlreadyVerified bool
}

type verifyResponse struct {
	Data struct {
		Code    int    `json:"code"`
		RefID   int64  `json:"ref_id"`
		CardPan string `json:"card_pan"`
		Message string `json:"message"`
	} `json:"data"`
	Errors any `json:"errors"`
}

// VerifyPayment confirms an authority with the gateway. A transport failure
// comes back wrapped in ErrGatewayUnreachable so the caller can leave the
// authority unconsumed and let a retry happen; a definitive rejection comes
// back as ErrPaymentNotVerified.
func (g *Client) VerifyPayment(authority string, amount uint) (*VerifyResult, error) {
	body := map[string]any{
		"merchant_id": g.MerchantID,
		"amount":      amount,
		"authority":   authority,
	}

	var parsed verifyResponse
	resp, err := g.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post(g.VerifyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: http %d", ErrGatewayUnreachable, resp.StatusCode())
	}

	switch parsed.Data.Code {
	case codeVerified, codeAlreadyVerified:
		return &VerifyResult{
			RefID:           fmt.Sprintf("%d", parsed.Data.RefID),
			CardPan:         parsed.Data.CardPan,
			AlreadyVerified: parsed.Data.Code == codeAlreadyVerified,
		}, nil
	default:
		return nil, fmt.Errorf("%w: code %d %s", ErrPaymentNotVerified, parsed.Data.Code, parsed.Data.Message)
	}
}
