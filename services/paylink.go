package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkpay/templates"
	"linkpay/utils"
)

// Client talks to the payment-processor backend and normalizes its payloads
// into the canonical PaymentData shape.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	defaultLogo string
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, defaultLogo string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		defaultLogo: defaultLogo,
	}
}

// detailsEnvelope wraps the backend's paymentlink/details response.
type detailsEnvelope struct {
	templates.APIEnvelope
	Data struct {
		PaymentLinkDetails templates.APIPaymentLinkDetails `json:"paymentLinkDetails"`
	} `json:"data"`
}

// FetchDetails loads payment-link details, optionally requesting a specific
// payment method. Pass an empty method to let the backend pick defaults.
func (c *Client) FetchDetails(ctx context.Context, paymentID string, method templates.PaymentMethodType) (*templates.PaymentData, error) {
	return c.fetchDetails(ctx, paymentID, method, false)
}

// Refresh re-requests method-specific details for an expired payment,
// yielding a fresh virtual account or Lightning invoice with a new expiry.
func (c *Client) Refresh(ctx context.Context, paymentID string, method templates.PaymentMethodType) (*templates.PaymentData, error) {
	if method == "" {
		return nil, &ValidationError{Message: "Payment method is required to refresh a payment"}
	}
	return c.fetchDetails(ctx, paymentID, method, true)
}

func (c *Client) fetchDetails(ctx context.Context, paymentID string, method templates.PaymentMethodType, refresh bool) (*templates.PaymentData, error) {
	if paymentID == "" {
		return nil, &ValidationError{Message: "Payment ID is required"}
	}
	if method != "" && !isKnownMethod(method) {
		return nil, &ValidationError{
			Message: fmt.Sprintf("Invalid payment method. Please use %s", joinMethodTypes()),
		}
	}

	params := url.Values{}
	params.Set("id", paymentID)
	if method != "" {
		params.Set("paymentMethod", string(method))
	}
	if refresh {
		params.Set("refreshPayment", "true")
	}

	var envelope detailsEnvelope
	if err := c.getJSON(ctx, "/paymentlink/details", params, &envelope); err != nil {
		return nil, err
	}

	data, err := transformDetails(&envelope.Data.PaymentLinkDetails, method, c.defaultLogo)
	if err != nil {
		return nil, err
	}

	utils.Info("gateway", "Payment link loaded",
		"payment_id", paymentID,
		"order_id", data.OrderID,
		"selected_method", string(data.SelectedMethod.Type),
		"refresh", refresh,
	)
	return data, nil
}

// getJSON performs one backend GET and decodes the envelope, mapping
// transport and envelope failures onto the service error taxonomy.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &NetworkError{Message: "Failed to build backend request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Message: "Failed to reach payment backend", Err: err}
	}
	defer resp.Body.Close()

	// Decode even on non-2xx responses: error envelopes carry the message
	// the UI should surface.
	decodeErr := json.NewDecoder(resp.Body).Decode(out)

	envelope := envelopeOf(out)
	if resp.StatusCode == http.StatusNotFound {
		msg := "Payment not found"
		if envelope != nil && envelope.Message != "" {
			msg = envelope.Message
		}
		return &NotFoundError{Message: msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("Payment backend returned status %d", resp.StatusCode)
		if envelope != nil && envelope.Message != "" {
			msg = envelope.Message
		}
		return &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return &NetworkError{Message: "Failed to decode backend response", Err: decodeErr}
	}
	if envelope != nil && envelope.Status != "ok" && envelope.Status != "success" {
		msg := envelope.Message
		if msg == "" {
			msg = "API returned error status"
		}
		return &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}
	return nil
}

// envelopeOf digs the embedded APIEnvelope out of a decoded response struct.
func envelopeOf(out interface{}) *templates.APIEnvelope {
	switch v := out.(type) {
	case *detailsEnvelope:
		return &v.APIEnvelope
	case *statusEnvelope:
		return &v.APIEnvelope
	}
	return nil
}

func isKnownMethod(method templates.PaymentMethodType) bool {
	for _, t := range templates.KnownMethodTypes {
		if t == method {
			return true
		}
	}
	return false
}

func joinMethodTypes() string {
	names := make([]string, 0, len(templates.KnownMethodTypes))
	for _, t := range templates.KnownMethodTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// transformDetails converts the backend payload into PaymentData: it derives
// the available method list, resolves the selected method by priority
// (requested > LIGHTNING > BANKTRANSFER > first available), and converts
// base-unit amounts into display denominations.
func transformDetails(details *templates.APIPaymentLinkDetails, requested templates.PaymentMethodType, defaultLogo string) (*templates.PaymentData, error) {
	var available []templates.PaymentMethod
	if hasMethodType(details.PaymentMethods, templates.MethodBankTransfer) {
		available = append(available, templates.PaymentMethod{
			ID:   "bank_transfer",
			Name: utils.PaymentMethodName(templates.MethodBankTransfer),
			Type: templates.MethodBankTransfer,
		})
	}
	if hasMethodType(details.PaymentMethods, templates.MethodLightning) {
		available = append(available, templates.PaymentMethod{
			ID:   "lightning_invoice",
			Name: utils.PaymentMethodName(templates.MethodLightning),
			Type: templates.MethodLightning,
		})
	}
	if len(available) == 0 {
		return nil, &BackendError{Message: "Payment link has no supported payment methods"}
	}

	selected := selectMethod(available, details, requested)

	var bankDetails *templates.BankTransferDetails
	if details.BankTransfer != nil {
		bankDetails = &templates.BankTransferDetails{
			BankName:       details.BankTransfer.NGNBankName,
			AccountNumber:  details.BankTransfer.NGNBankAccountNumber,
			AccountName:    details.BankTransfer.NGNAccountName,
			Amount:         utils.ToHighestDenomination(details.BankTransfer.Amount, templates.CurrencyNGNKobo),
			TargetAmount:   details.BankTransfer.TargetAmount,
			Currency:       string(templates.CurrencyNGNKobo),
			CurrencySymbol: utils.CurrencySymbol(string(templates.CurrencyNGNKobo)),
			ExpiresAt:      details.BankTransfer.ExpiresAt,
		}
	}

	var lightningDetails *templates.LightningInvoiceDetails
	if details.Lightning != nil {
		lightningDetails = &templates.LightningInvoiceDetails{
			Invoice:        details.Lightning.Invoice,
			Amount:         utils.ToHighestDenomination(details.Lightning.Amount, templates.CurrencyBTCSat),
			TargetAmount:   details.Lightning.TargetAmount,
			Currency:       details.SettlementCurrency,
			CurrencySymbol: utils.CurrencySymbol(string(templates.CurrencyBTCSat)),
			SatsAmount:     details.Lightning.Amount,
			ExpiresAt:      details.Lightning.ExpiresAt,
			QRCodeData:     details.Lightning.Invoice,
		}
	}

	// Display amount and expiry follow the selected method
	var amount float64
	var expiresAt string
	if selected.Type == templates.MethodLightning {
		if details.Lightning != nil {
			amount = float64(details.Lightning.Amount)
			expiresAt = details.Lightning.ExpiresAt
		}
	} else {
		if details.BankTransfer != nil {
			amount = utils.ToHighestDenomination(details.BankTransfer.Amount, templates.CurrencyNGNKobo)
			expiresAt = details.BankTransfer.ExpiresAt
		}
	}

	logo := details.Account.Logo
	if logo == "" {
		logo = defaultLogo
	}

	return &templates.PaymentData{
		ID:                      details.ID,
		MerchantName:            details.Account.Name,
		MerchantLogo:            logo,
		Description:             details.Description,
		Amount:                  amount,
		SettlementCurrency:      details.SettlementCurrency,
		ExpiresAt:               expiresAt,
		PaymentMethods:          available,
		SelectedMethod:          &selected,
		BankTransferDetails:     bankDetails,
		LightningInvoiceDetails: lightningDetails,
		Status:                  "pending",
		OrderID:                 details.PaymentLinkOrderID,
		CallbackURL:             details.CallbackURL,
	}, nil
}

// selectMethod resolves the selected payment method. The explicit request
// wins when that method is available; otherwise Lightning is preferred over
// bank transfer, and the first available method is the last resort.
func selectMethod(available []templates.PaymentMethod, details *templates.APIPaymentLinkDetails, requested templates.PaymentMethodType) templates.PaymentMethod {
	if requested != "" {
		for _, m := range available {
			if m.Type == requested {
				return m
			}
		}
	}
	if details.Lightning != nil {
		for _, m := range available {
			if m.Type == templates.MethodLightning {
				return m
			}
		}
	}
	if details.BankTransfer != nil {
		for _, m := range available {
			if m.Type == templates.MethodBankTransfer {
				return m
			}
		}
	}
	return available[0]
}

func hasMethodType(methods []templates.PaymentMethodType, t templates.PaymentMethodType) bool {
	for _, m := range methods {
		if m == t {
			return true
		}
	}
	return false
}
