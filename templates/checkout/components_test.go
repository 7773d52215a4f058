package checkout

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"linkpay/config"
	"linkpay/templates"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func bankView(expired bool) View {
	return View{
		Data: &templates.PaymentData{
			ID:           "pl_123",
			MerchantName: "Acme Store",
			Description:  "Premium subscription",
			PaymentMethods: []templates.PaymentMethod{
				{ID: "bank_transfer", Name: "Bank Transfer", Type: templates.MethodBankTransfer},
				{ID: "lightning_invoice", Name: "Lightning Invoice", Type: templates.MethodLightning},
			},
			SelectedMethod: &templates.PaymentMethod{ID: "bank_transfer", Name: "Bank Transfer", Type: templates.MethodBankTransfer},
			BankTransferDetails: &templates.BankTransferDetails{
				BankName:       "First Bank",
				AccountNumber:  "0123456789",
				Amount:         1500,
				TargetAmount:   21000,
				Currency:       "NGNKOBO",
				CurrencySymbol: "₦",
			},
		},
		TimeLeft: "0:29:59",
		Expired:  expired,
	}
}

func TestCheckoutPageWiresPollers(t *testing.T) {
	html := render(t, CheckoutPage(bankView(false)))

	for _, want := range []string{
		`hx-get="/payment-countdown?payment_id=pl_123"`,
		`hx-get="/check-payment-status?payment_id=pl_123"`,
		`hx-trigger="paymentExpired from:body"`,
		// Poll cadences come from the configured intervals
		fmt.Sprintf(`hx-trigger="every %ds"`, int(config.CountdownInterval.Seconds())),
		fmt.Sprintf(`hx-trigger="every %ds"`, int(config.StatusPollInterval.Seconds())),
		"PAYMENT LINK FROM ACME STORE",
		"0123456789",
		"I have Paid",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestBankContentExpiredState(t *testing.T) {
	html := render(t, PaymentContent(bankView(true)))

	if !strings.Contains(html, "Payment expired") {
		t.Error("expired header missing")
	}
	if !strings.Contains(html, "blurred") {
		t.Error("expired details should be blurred")
	}
	if !strings.Contains(html, "Refresh Payment") {
		t.Error("expired state should offer a refresh")
	}
	if strings.Contains(html, "I have Paid") {
		t.Error("expired state must not offer confirmation")
	}
}

func TestLightningContent(t *testing.T) {
	v := bankView(false)
	v.Data.SelectedMethod = &v.Data.PaymentMethods[1]
	v.Data.LightningInvoiceDetails = &templates.LightningInvoiceDetails{
		Invoice:        "lnbc210u1pverylonginvoicebody000000000",
		Amount:         0.00021,
		Currency:       "BTCSAT",
		CurrencySymbol: "₿",
		SatsAmount:     21000,
	}
	v.QRBase64 = "aGVsbG8="

	html := render(t, PaymentContent(v))

	if !strings.Contains(html, "Pay this invoice") {
		t.Error("lightning header missing")
	}
	if !strings.Contains(html, "21,000 SATS") {
		t.Error("sats amount missing")
	}
	if !strings.Contains(html, "data:image/png;base64,aGVsbG8=") {
		t.Error("QR image missing")
	}
	// Truncated display but the full invoice stays copyable
	if !strings.Contains(html, "lnbc210u1pverylonginvoice...") {
		t.Error("invoice should be truncated for display")
	}
	if !strings.Contains(html, `data-copy="lnbc210u1pverylonginvoicebody000000000"`) {
		t.Error("full invoice should be on the copy button")
	}
}

func TestProcessingCardSteps(t *testing.T) {
	html := render(t, ProcessingCard(bankView(false), "confirming", "4:59"))

	if !strings.Contains(html, `class="step done"`) {
		t.Error("sent step should be done")
	}
	if !strings.Contains(html, `class="step active"`) {
		t.Error("confirming step should be active")
	}
	if !strings.Contains(html, `hx-get="/payment-processing?payment_id=pl_123"`) {
		t.Error("processing poller missing")
	}
	if !strings.Contains(html, "Show account number") {
		t.Error("bank processing should offer the account toggle")
	}
}

func TestRefreshedContentRestartsPollers(t *testing.T) {
	html := render(t, RefreshedContent(bankView(false)))

	if strings.Count(html, `hx-swap-oob="true"`) != 2 {
		t.Errorf("expected two out-of-band poller restarts, got:\n%s", html)
	}
}

func TestSuccessPage(t *testing.T) {
	v := bankView(false)
	v.Data.CallbackURL = "https://merchant.example/done"
	v.Data.OrderID = "order_456"

	html := render(t, SuccessPage(v.Data))

	if !strings.Contains(html, "Payment Successful") {
		t.Error("success heading missing")
	}
	if !strings.Contains(html, `href="https://merchant.example/done"`) {
		t.Error("close button should link to the merchant callback")
	}
	if !strings.Contains(html, "order_456") {
		t.Error("order reference missing")
	}
}

func TestErrorPage(t *testing.T) {
	html := render(t, ErrorPage("Payment link not found"))
	if !strings.Contains(html, "Payment link not found") {
		t.Error("error message missing")
	}

	html = render(t, ErrorPage(""))
	if !strings.Contains(html, "Payment not found") {
		t.Error("empty message should fall back to a default")
	}
}
