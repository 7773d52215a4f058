// Package checkout renders the checkout UI as templ components. Components
// are built as raw HTML fragments (the same approach the progress fragments
// use) so they can be swapped in by HTMX polling without a client framework.
package checkout

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/a-h/templ"

	"linkpay/config"
	"linkpay/templates"
	"linkpay/utils"
)

// View carries everything the checkout page and its fragments need to
// render one state of a session.
type View struct {
	Data     *templates.PaymentData
	TimeLeft string
	Expired  bool
	// QRBase64 is the pre-rendered Lightning invoice QR as a base64 PNG.
	QRBase64 string
}

func esc(s string) string {
	return html.EscapeString(s)
}

// page builds the full HTML document around a body fragment.
func page(title, body string) templ.Component {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html lang=\"en\"><head>")
	b.WriteString("<meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
	fmt.Fprintf(&b, "<title>%s</title>", esc(title))
	b.WriteString("<link rel=\"stylesheet\" href=\"/static/css/styles.css\">")
	b.WriteString("<script src=\"https://unpkg.com/htmx.org@1.9.12\"></script>")
	b.WriteString("<script src=\"/static/js/clipboard.js\" defer></script>")
	b.WriteString("</head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return templ.Raw(b.String())
}

// CheckoutPage is the full Ready-state page: merchant header, method
// selector, payment content, and the two polling fragments.
func CheckoutPage(v View) templ.Component {
	var b strings.Builder
	b.WriteString("<div class=\"checkout\">")
	b.WriteString(headerHTML(v.Data))
	b.WriteString("<div class=\"checkout-body\">")
	b.WriteString(methodSelectorHTML(v.Data))
	fmt.Fprintf(&b, "<p class=\"description\">%s</p>", esc(v.Data.Description))

	// Swapped by method switches, confirmation, refresh, and expiry
	fmt.Fprintf(&b,
		"<div id=\"payment-content\" hx-get=\"/payment-details?payment_id=%s\" hx-trigger=\"paymentExpired from:body\" hx-swap=\"innerHTML\">",
		esc(v.Data.ID))
	b.WriteString(contentHTML(v))
	b.WriteString("</div>")

	b.WriteString(countdownPollerHTML(v.Data.ID, v.TimeLeft))
	b.WriteString(statusPollerHTML(v.Data.ID))
	b.WriteString(footerHTML())
	b.WriteString("</div></div>")
	return page(v.Data.MerchantName+" · Checkout", b.String())
}

// ErrorPage is the blocking full-page error shown when the initial load
// fails. No retry: the only way out is leaving the page.
func ErrorPage(message string) templ.Component {
	var b strings.Builder
	b.WriteString("<div class=\"checkout error-page\"><div class=\"card\">")
	b.WriteString("<h2>Error</h2>")
	if message == "" {
		message = "Payment not found"
	}
	fmt.Fprintf(&b, "<p>%s</p>", esc(message))
	b.WriteString("</div></div>")
	return page("Checkout Error", b.String())
}

// PaymentContent is the swappable details + actions fragment.
func PaymentContent(v View) templ.Component {
	return templ.Raw(contentHTML(v))
}

// PaymentContentWithSelector renders the details fragment plus an
// out-of-band re-render of the method selector, used after a method switch
// so the highlighted tab follows the new selection.
func PaymentContentWithSelector(v View) templ.Component {
	var b strings.Builder
	b.WriteString(contentHTML(v))
	b.WriteString(methodSelectorOOBHTML(v.Data))
	return templ.Raw(b.String())
}

// RefreshedContent renders fresh details plus out-of-band restarts of the
// countdown and status pollers, which went inert when the payment expired.
func RefreshedContent(v View) templ.Component {
	var b strings.Builder
	b.WriteString(contentHTML(v))
	b.WriteString(oob(countdownPollerHTML(v.Data.ID, v.TimeLeft)))
	b.WriteString(oob(statusPollerHTML(v.Data.ID)))
	return templ.Raw(b.String())
}

// Countdown is the 1-second polling fragment showing the expiry countdown.
// stopped renders an inert fragment that no longer polls.
func Countdown(paymentID, timeLeft string, stopped bool) templ.Component {
	if stopped {
		return templ.Raw(fmt.Sprintf(
			"<div id=\"countdown\"><span class=\"countdown expired\">%s</span></div>", esc(timeLeft)))
	}
	return templ.Raw(countdownPollerHTML(paymentID, timeLeft))
}

// StatusPoll re-renders the 5-second status poller. stopped swaps in an
// inert fragment so HTMX stops hitting the endpoint.
func StatusPoll(paymentID string, stopped bool) templ.Component {
	if stopped {
		return templ.Raw("<div id=\"status-poll\"></div>")
	}
	return templ.Raw(statusPollerHTML(paymentID))
}

// ProcessingCard shows the settlement animation: sent -> confirming ->
// received, with the remaining method expiry as a short countdown.
func ProcessingCard(v View, step string, shortTimeLeft string) templ.Component {
	return templ.Raw(processingHTML(v, step, shortTimeLeft))
}

func processingHTML(v View, step string, shortTimeLeft string) string {
	var b strings.Builder
	amount := headerAmount(v.Data)

	b.WriteString("<div class=\"card processing\">")
	fmt.Fprintf(&b, "<div class=\"card-header\">Transfer this exact amount <span class=\"amount\">%s</span></div>", amount)
	b.WriteString("<h3>We are waiting to confirm your payment. Please keep this tab open</h3>")
	fmt.Fprintf(&b, "<p class=\"wait\">Please wait for <span class=\"countdown\">%s</span></p>", esc(shortTimeLeft))

	b.WriteString("<div class=\"steps\">")
	writeStep(&b, "sent", "Sent", step)
	writeStep(&b, "confirming", "Confirming", step)
	writeStep(&b, "received", "Received", step)
	b.WriteString("</div>")

	showLabel := "Show invoice details"
	if v.Data.SelectedMethod != nil && v.Data.SelectedMethod.Type == templates.MethodBankTransfer {
		showLabel = "Show account number"
	}
	fmt.Fprintf(&b,
		"<button class=\"btn secondary\" hx-get=\"/payment-details?payment_id=%s\" hx-target=\"#payment-content\" hx-swap=\"innerHTML\">%s</button>",
		esc(v.Data.ID), showLabel)
	b.WriteString("</div>")
	b.WriteString(warningCardHTML())
	b.WriteString(cancelButtonHTML(v.Data.ID))
	// Drives the step animation and the eventual success redirect
	fmt.Fprintf(&b,
		"<div hx-get=\"/payment-processing?payment_id=%s\" hx-trigger=\"%s\" hx-target=\"#payment-content\" hx-swap=\"innerHTML\"></div>",
		esc(v.Data.ID), every(config.CountdownInterval))
	return b.String()
}

func writeStep(b *strings.Builder, id, label, current string) {
	order := map[string]int{"sent": 0, "confirming": 1, "received": 2}
	state := "todo"
	if order[id] < order[current] || id == current {
		state = "active"
	}
	if order[id] < order[current] {
		state = "done"
	}
	fmt.Fprintf(b, "<div class=\"step %s\"><span class=\"dot\"></span><span class=\"label\">%s</span></div>", state, esc(label))
}

// SuccessPage is the terminal view after a confirmed settlement.
func SuccessPage(data *templates.PaymentData) templ.Component {
	var b strings.Builder
	b.WriteString("<div class=\"checkout\">")
	b.WriteString(headerHTML(data))
	b.WriteString("<div class=\"checkout-body\"><div class=\"card success\">")
	b.WriteString("<div class=\"success-icon\">✓</div>")
	b.WriteString("<h2>Payment Successful</h2>")
	fmt.Fprintf(&b, "<p>Your payment to %s has been confirmed.</p>", esc(data.MerchantName))
	fmt.Fprintf(&b, "<p class=\"amount\">%s</p>", headerAmount(data))
	if data.OrderID != "" {
		fmt.Fprintf(&b, "<p class=\"order\">Order: %s</p>", esc(data.OrderID))
	}
	closeURL := data.CallbackURL
	if closeURL == "" {
		closeURL = "/"
	}
	fmt.Fprintf(&b, "<a class=\"btn primary\" href=\"%s\">Close checkout</a>", esc(closeURL))
	b.WriteString("</div>")
	b.WriteString(footerHTML())
	b.WriteString("</div></div>")
	return page("Payment Successful", b.String())
}

// SettledPoll is the status poller's response on the settled transition: it
// swaps itself inert and pushes the processing card into the content area
// out-of-band.
func SettledPoll(v View, step string, shortTimeLeft string) templ.Component {
	var b strings.Builder
	b.WriteString("<div id=\"status-poll\"></div>")
	b.WriteString("<div id=\"payment-content\" hx-swap-oob=\"innerHTML\">")
	b.WriteString(processingHTML(v, step, shortTimeLeft))
	b.WriteString("</div>")
	return templ.Raw(b.String())
}

// oob marks a fragment for an out-of-band swap by id.
func oob(fragment string) string {
	return strings.Replace(fragment, "\">", "\" hx-swap-oob=\"true\">", 1)
}

func methodSelectorOOBHTML(data *templates.PaymentData) string {
	return strings.Replace(methodSelectorHTML(data),
		"<div id=\"method-selector\" class=\"methods\">",
		"<div id=\"method-selector\" class=\"methods\" hx-swap-oob=\"true\">", 1)
}

func headerHTML(data *templates.PaymentData) string {
	var b strings.Builder
	b.WriteString("<header class=\"merchant\">")
	if data.MerchantLogo != "" {
		fmt.Fprintf(&b, "<img src=\"%s\" alt=\"%s logo\" class=\"logo\">", esc(data.MerchantLogo), esc(data.MerchantName))
	}
	fmt.Fprintf(&b, "<div class=\"merchant-note\"><p>PAYMENT LINK FROM %s</p><p>THIS LINK EXPIRES AFTER PAYMENT IS RECEIVED</p></div>",
		esc(strings.ToUpper(data.MerchantName)))
	b.WriteString("</header>")
	return b.String()
}

func footerHTML() string {
	return "<footer class=\"powered-by\">Secured by LinkPay</footer>"
}

func methodSelectorHTML(data *templates.PaymentData) string {
	var b strings.Builder
	b.WriteString("<div id=\"method-selector\" class=\"methods\">")
	for _, m := range data.PaymentMethods {
		class := "method"
		if data.SelectedMethod != nil && data.SelectedMethod.Type == m.Type {
			class = "method selected"
		}
		fmt.Fprintf(&b,
			"<button class=\"%s\" hx-post=\"/select-method\" hx-vals='{\"payment_id\":\"%s\",\"method\":\"%s\"}' hx-target=\"#payment-content\" hx-swap=\"innerHTML\">%s</button>",
			class, esc(data.ID), esc(string(m.Type)), esc(m.Name))
	}
	b.WriteString("</div>")
	return b.String()
}

// every renders an HTMX polling trigger for the given cadence.
func every(d time.Duration) string {
	return fmt.Sprintf("every %ds", int(d.Seconds()))
}

func countdownPollerHTML(paymentID, timeLeft string) string {
	return fmt.Sprintf(
		"<div id=\"countdown\" hx-get=\"/payment-countdown?payment_id=%s\" hx-trigger=\"%s\" hx-swap=\"outerHTML\"><span class=\"countdown\">%s</span></div>",
		esc(paymentID), every(config.CountdownInterval), esc(timeLeft))
}

func statusPollerHTML(paymentID string) string {
	return fmt.Sprintf(
		"<div id=\"status-poll\" hx-get=\"/check-payment-status?payment_id=%s\" hx-trigger=\"%s\" hx-swap=\"outerHTML\"></div>",
		esc(paymentID), every(config.StatusPollInterval))
}

// contentHTML renders the method details card plus the action buttons.
func contentHTML(v View) string {
	var b strings.Builder
	if v.Data.SelectedMethod != nil && v.Data.SelectedMethod.Type == templates.MethodLightning {
		b.WriteString(lightningCardHTML(v))
	} else {
		b.WriteString(bankCardHTML(v))
	}
	b.WriteString(warningCardHTML())
	b.WriteString(actionsHTML(v.Data.ID, v.Expired))
	return b.String()
}

func bankCardHTML(v View) string {
	var b strings.Builder
	bank := v.Data.BankTransferDetails

	b.WriteString("<div class=\"card payment-details\">")
	b.WriteString(detailsHeaderHTML(v))

	blur := ""
	if v.Expired {
		blur = " blurred"
	}
	fmt.Fprintf(&b, "<div class=\"bank-fields%s\">", blur)
	if bank != nil {
		writeField(&b, "BANK NAME", bank.BankName, "", "")
		writeField(&b, "ACCOUNT NUMBER", bank.AccountNumber, bank.AccountNumber, "account number")
		amountStr := utils.FormatAmount(bank.Amount, bank.Currency, bank.CurrencySymbol)
		writeField(&b, "AMOUNT", amountStr, fmt.Sprintf("%.2f", bank.Amount), "amount")
	} else {
		b.WriteString("<p class=\"missing\">Bank transfer details not available</p>")
	}
	b.WriteString("</div>")

	b.WriteString(expiryLineHTML(v, "This account is for this transaction only and expires in"))
	b.WriteString("</div>")
	return b.String()
}

func lightningCardHTML(v View) string {
	var b strings.Builder
	ln := v.Data.LightningInvoiceDetails

	b.WriteString("<div class=\"card payment-details\">")
	b.WriteString(detailsHeaderHTML(v))

	blur := ""
	if v.Expired {
		blur = " blurred"
	}
	fmt.Fprintf(&b, "<div class=\"lightning%s\">", blur)
	if ln != nil {
		if v.QRBase64 != "" {
			fmt.Fprintf(&b, "<img class=\"qr\" src=\"data:image/png;base64,%s\" alt=\"Lightning Invoice QR Code\" width=\"200\" height=\"200\">", v.QRBase64)
		}
		invoice := ln.Invoice
		short := invoice
		if len(short) > 25 {
			short = short[:25] + "..."
		}
		fmt.Fprintf(&b, "<div class=\"invoice-row\"><span class=\"invoice\">%s</span>", esc(short))
		fmt.Fprintf(&b, "<button class=\"btn copy-btn\" data-copy=\"%s\" data-copy-key=\"Lightning invoice\">Copy</button></div>", esc(invoice))
	} else {
		b.WriteString("<p class=\"missing\">Lightning invoice not available</p>")
	}
	b.WriteString("</div>")

	b.WriteString(expiryLineHTML(v, "This Lightning invoice will expire in"))
	b.WriteString("</div>")
	return b.String()
}

func detailsHeaderHTML(v View) string {
	if v.Expired {
		return "<div class=\"card-header expired\">Payment expired</div>"
	}
	if v.Data.SelectedMethod != nil && v.Data.SelectedMethod.Type == templates.MethodLightning {
		ln := v.Data.LightningInvoiceDetails
		if ln != nil {
			return fmt.Sprintf("<div class=\"card-header\">Pay this invoice <span class=\"amount\">%s (%s)</span></div>",
				esc(utils.FormatSats(ln.SatsAmount)),
				esc(utils.FormatAmount(ln.Amount, ln.Currency, ln.CurrencySymbol)))
		}
		return "<div class=\"card-header\">Pay this invoice</div>"
	}
	return fmt.Sprintf("<div class=\"card-header\">Transfer this exact amount <span class=\"amount\">%s</span></div>", headerAmount(v.Data))
}

// headerAmount renders the selected method's display amount with its target
// sats equivalent where one exists.
func headerAmount(data *templates.PaymentData) string {
	if data.SelectedMethod != nil && data.SelectedMethod.Type == templates.MethodLightning {
		if ln := data.LightningInvoiceDetails; ln != nil {
			return esc(utils.FormatSats(ln.SatsAmount))
		}
	}
	if bank := data.BankTransferDetails; bank != nil {
		s := utils.FormatAmount(bank.Amount, bank.Currency, bank.CurrencySymbol)
		if bank.TargetAmount > 0 {
			s += fmt.Sprintf(" (%s)", utils.FormatSats(bank.TargetAmount))
		}
		return esc(s)
	}
	return esc(utils.FormatAmount(data.Amount, data.SettlementCurrency, utils.CurrencySymbol(data.SettlementCurrency)))
}

func expiryLineHTML(v View, label string) string {
	return fmt.Sprintf("<div class=\"expiry\">%s <span class=\"countdown\">%s</span></div>", esc(label), esc(v.TimeLeft))
}

func writeField(b *strings.Builder, label, value, copyValue, copyKey string) {
	fmt.Fprintf(b, "<div class=\"field\"><label>%s</label><div class=\"field-row\"><span class=\"value\">%s</span>", esc(label), esc(value))
	if copyValue != "" {
		fmt.Fprintf(b, "<button class=\"btn copy-btn\" data-copy=\"%s\" data-copy-key=\"%s\">Copy</button>", esc(copyValue), esc(copyKey))
	}
	b.WriteString("</div></div>")
}

func warningCardHTML() string {
	return "<div class=\"card warning\">Please do not close this tab until your payment has been confirmed!!!</div>"
}

// actionsHTML renders Cancel plus either "I have Paid" or, once expired,
// "Refresh Payment".
func actionsHTML(paymentID string, expired bool) string {
	var b strings.Builder
	b.WriteString("<div class=\"actions\">")
	b.WriteString(cancelButtonHTML(paymentID))
	if expired {
		fmt.Fprintf(&b,
			"<button class=\"btn primary\" hx-post=\"/refresh-payment\" hx-vals='{\"payment_id\":\"%s\"}' hx-target=\"#payment-content\" hx-swap=\"innerHTML\">Refresh Payment</button>",
			esc(paymentID))
	} else {
		fmt.Fprintf(&b,
			"<button class=\"btn primary\" hx-post=\"/confirm-payment\" hx-vals='{\"payment_id\":\"%s\"}' hx-target=\"#payment-content\" hx-swap=\"innerHTML\">I have Paid</button>",
			esc(paymentID))
	}
	b.WriteString("</div>")
	return b.String()
}

func cancelButtonHTML(paymentID string) string {
	return fmt.Sprintf(
		"<button class=\"btn cancel\" hx-post=\"/cancel-payment\" hx-vals='{\"payment_id\":\"%s\"}' hx-confirm=\"Cancel this payment?\" hx-swap=\"none\">Cancel</button>",
		esc(paymentID))
}
