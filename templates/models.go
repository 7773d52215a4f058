package templates

// PaymentMethodType identifies how a customer can settle a payment link.
type PaymentMethodType string

const (
	MethodBankTransfer PaymentMethodType = "BANKTRANSFER"
	MethodLightning    PaymentMethodType = "LIGHTNING"
)

// KnownMethodTypes lists every payment method type the checkout understands.
var KnownMethodTypes = []PaymentMethodType{MethodBankTransfer, MethodLightning}

// PaymentMethod is one selectable payment option on a payment link.
type PaymentMethod struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Type PaymentMethodType `json:"type"`
}

// TransactionCurrency is a backend base-unit currency code.
type TransactionCurrency string

const (
	CurrencyNGNKobo TransactionCurrency = "NGNKOBO"
	CurrencyBTCSat  TransactionCurrency = "BTCSAT"
	CurrencyUSDCent TransactionCurrency = "USDCENT"
)

// PaymentStatus is the authoritative order status polled from the backend.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusSettled   PaymentStatus = "SETTLED"
	StatusSuccess   PaymentStatus = "SUCCESS"
	StatusExpired   PaymentStatus = "EXPIRED"
	StatusFailed    PaymentStatus = "FAILED"
	StatusCancelled PaymentStatus = "CANCELLED"
)

// IsSettled reports whether the status means the backend confirmed receipt
// of funds. The backend emits both SETTLED and SUCCESS for that case.
func (s PaymentStatus) IsSettled() bool {
	return s == StatusSettled || s == StatusSuccess
}

// BankTransferDetails holds the single-use virtual account issued for a
// bank-transfer payment. Amount is in major units (naira, not kobo).
type BankTransferDetails struct {
	BankName       string  `json:"bankName"`
	AccountNumber  string  `json:"accountNumber"`
	AccountName    string  `json:"accountName"`
	Amount         float64 `json:"amount"`
	TargetAmount   int64   `json:"targetAmount"`
	Currency       string  `json:"currency"`
	CurrencySymbol string  `json:"currencySymbol"`
	ExpiresAt      string  `json:"expiresAt"`
}

// LightningInvoiceDetails holds the BOLT11 invoice for a Lightning payment.
// Amount is in BTC, SatsAmount is the same value in satoshis.
type LightningInvoiceDetails struct {
	Invoice        string  `json:"invoice"`
	Amount         float64 `json:"amount"`
	TargetAmount   int64   `json:"targetAmount"`
	Currency       string  `json:"currency"`
	CurrencySymbol string  `json:"currencySymbol"`
	SatsAmount     int64   `json:"satsAmount"`
	ExpiresAt      string  `json:"expiresAt"`
	QRCodeData     string  `json:"qrCodeData"`
}

// PaymentData is the canonical shape of one checkout session. It is built by
// the payment gateway from the backend payload and replaced wholesale on
// method switch or refresh, never mutated in place.
type PaymentData struct {
	ID                      string                   `json:"id"`
	MerchantName            string                   `json:"merchantName"`
	MerchantLogo            string                   `json:"merchantLogo"`
	Description             string                   `json:"description"`
	Amount                  float64                  `json:"amount"`
	SettlementCurrency      string                   `json:"settlementCurrency"`
	ExpiresAt               string                   `json:"expiresAt"`
	PaymentMethods          []PaymentMethod          `json:"paymentMethods"`
	SelectedMethod          *PaymentMethod           `json:"selectedMethod,omitempty"`
	BankTransferDetails     *BankTransferDetails     `json:"bankTransferDetails,omitempty"`
	LightningInvoiceDetails *LightningInvoiceDetails `json:"lightningInvoiceDetails,omitempty"`
	Status                  string                   `json:"status"`
	OrderID                 string                   `json:"orderId"`
	CallbackURL             string                   `json:"callbackUrl"`
}

// MethodExpiry returns the expiry timestamp of the currently selected
// method, falling back to the overall link expiry. Virtual accounts and
// Lightning invoices expire independently of the payment link itself.
func (p *PaymentData) MethodExpiry() string {
	if p.SelectedMethod != nil {
		switch p.SelectedMethod.Type {
		case MethodBankTransfer:
			if p.BankTransferDetails != nil && p.BankTransferDetails.ExpiresAt != "" {
				return p.BankTransferDetails.ExpiresAt
			}
		case MethodLightning:
			if p.LightningInvoiceDetails != nil && p.LightningInvoiceDetails.ExpiresAt != "" {
				return p.LightningInvoiceDetails.ExpiresAt
			}
		}
	}
	return p.ExpiresAt
}

// HasMethod reports whether the payment link supports the given method type.
func (p *PaymentData) HasMethod(t PaymentMethodType) bool {
	for _, m := range p.PaymentMethods {
		if m.Type == t {
			return true
		}
	}
	return false
}

// APIEnvelope is the response wrapper used by every backend endpoint.
// Status is "ok" or "success" on the happy path, "error" otherwise.
type APIEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// APIAccount is the merchant account block inside paymentLinkDetails.
type APIAccount struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// APIBankTransfer is the raw bank-transfer block from the backend.
// Amount is in kobo.
type APIBankTransfer struct {
	NGNBankName          string `json:"ngnBankName"`
	NGNBankAccountNumber string `json:"ngnBankAccountNumber"`
	NGNAccountName       string `json:"ngnAccountName"`
	Amount               int64  `json:"amount"`
	TargetAmount         int64  `json:"targetAmount"`
	ExpiresAt            string `json:"expiresAt"`
}

// APILightning is the raw Lightning block from the backend.
// Amount is in satoshis.
type APILightning struct {
	Invoice      string `json:"invoice"`
	Amount       int64  `json:"amount"`
	TargetAmount int64  `json:"targetAmount"`
	ExpiresAt    string `json:"expiresAt"`
}

// APIPaymentLinkDetails is the backend's details payload before the gateway
// normalizes it into PaymentData.
type APIPaymentLinkDetails struct {
	ID                 string              `json:"id"`
	Description        string              `json:"description"`
	SettlementCurrency string              `json:"settlementCurrency"`
	PaymentLinkOrderID string              `json:"paymentLinkOrderId"`
	CallbackURL        string              `json:"callbackUrl"`
	Account            APIAccount          `json:"account"`
	PaymentMethods     []PaymentMethodType `json:"paymentMethods"`
	BankTransfer       *APIBankTransfer    `json:"BANKTRANSFER,omitempty"`
	Lightning          *APILightning       `json:"LIGHTNING,omitempty"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	// Payment backend
	APIBaseURL string `json:"apiBaseURL"`

	// Branding fallback when the backend supplies no merchant logo
	DefaultMerchantLogo string `json:"defaultMerchantLogo"`

	// Website information
	WebsiteName string `json:"websiteName"`

	// System configuration
	Port    string `json:"port"`
	DataDir string `json:"dataDir"`
}
