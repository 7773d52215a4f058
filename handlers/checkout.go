// Package handlers wires the HTTP surface to the checkout services: page
// loads, HTMX fragment endpoints, and the polling endpoints the page uses to
// track countdown and settlement.
package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/skip2/go-qrcode"

	"linkpay/config"
	"linkpay/services"
	"linkpay/templates"
	"linkpay/templates/checkout"
	"linkpay/utils"
)

var (
	// Gateway talks to the payment-link backend.
	Gateway *services.Client

	// GlobalSessionManager tracks one CheckoutSession per open payment link.
	GlobalSessionManager *services.SessionManager

	// DataStore persists the last-loaded payment so the success view can
	// render after the session is gone.
	DataStore services.Store
)

// Init sets up the package-level collaborators. Must run before any handler
// is registered.
func Init(gateway *services.Client, store services.Store) {
	Gateway = gateway
	DataStore = store
	GlobalSessionManager = services.NewSessionManager()
}

// CheckoutPageHandler serves the checkout page for a payment link. A load
// failure is blocking: the visitor gets a full error page with the backend's
// message and no retry affordance.
func CheckoutPageHandler(w http.ResponseWriter, r *http.Request) {
	paymentID := r.PathValue("id")
	requestedMethod := templates.PaymentMethodType(r.URL.Query().Get("paymentMethod"))

	data, err := Gateway.FetchDetails(r.Context(), paymentID, requestedMethod)
	if err != nil {
		utils.Error("checkout", "Initial payment load failed", "payment_id", paymentID, "error", err)
		w.WriteHeader(services.ErrorStatusCode(err))
		renderComponent(w, r, checkout.ErrorPage(services.ErrorMessage(err, "Unable to load payment")))
		return
	}

	session := services.NewCheckoutSession(data)
	session.SetSettleHook(func(d *templates.PaymentData) {
		if err := DataStore.Set(config.StoredPaymentKey, d); err != nil {
			utils.Error("checkout", "Failed to persist settled payment", "payment_id", d.ID, "error", err)
		}
	})
	GlobalSessionManager.Put(session)
	session.StartPolling(context.Background(), Gateway)

	utils.Info("checkout", "Checkout page loaded",
		"payment_id", paymentID,
		"method", string(selectedType(data)),
		"order_id", data.OrderID)

	renderComponent(w, r, checkout.CheckoutPage(buildDetailsView(session)))
}

// SuccessPageHandler serves the terminal success view. It prefers the live
// session's data and falls back to the persisted copy so a reload after the
// session is cleaned up still renders.
func SuccessPageHandler(w http.ResponseWriter, r *http.Request) {
	paymentID := r.PathValue("id")

	var data *templates.PaymentData
	if session, ok := GlobalSessionManager.Get(paymentID); ok {
		data = session.Data()
		session.StopPolling()
	} else {
		var stored templates.PaymentData
		found, err := DataStore.Get(config.StoredPaymentKey, &stored)
		if err != nil {
			utils.Error("checkout", "Failed to load stored payment", "error", err)
		}
		if found && stored.ID == paymentID {
			data = &stored
		}
	}

	if data == nil {
		w.WriteHeader(http.StatusNotFound)
		renderComponent(w, r, checkout.ErrorPage("Payment not found"))
		return
	}

	utils.Info("checkout", "Success page served", "payment_id", paymentID)
	renderComponent(w, r, checkout.SuccessPage(data))
}

// buildView snapshots a session into the render model. The processing and
// poller fragments render from this directly; details views go through
// buildDetailsView so QR encoding only happens where the image is embedded.
func buildView(session *services.CheckoutSession) checkout.View {
	data := session.Data()
	return checkout.View{
		Data:     data,
		TimeLeft: utils.TimeLeft(data.MethodExpiry(), time.Now()),
		Expired:  session.Expired(),
	}
}

// buildDetailsView additionally renders the Lightning QR when that method is
// active.
func buildDetailsView(session *services.CheckoutSession) checkout.View {
	view := buildView(session)
	if selectedType(view.Data) == templates.MethodLightning && view.Data.LightningInvoiceDetails != nil {
		view.QRBase64 = invoiceQRBase64(view.Data.LightningInvoiceDetails.Invoice)
	}
	return view
}

// invoiceQRBase64 renders a Lightning invoice as a base64 PNG for inline
// embedding. Returns empty on failure; the page falls back to the copyable
// invoice string.
func invoiceQRBase64(invoice string) string {
	qr, err := qrcode.New(invoice, qrcode.Medium)
	if err != nil {
		utils.Error("checkout", "Error generating invoice QR code", "error", err)
		return ""
	}
	png, err := qr.PNG(200)
	if err != nil {
		utils.Error("checkout", "Error encoding invoice QR code", "error", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(png)
}

func selectedType(data *templates.PaymentData) templates.PaymentMethodType {
	if data != nil && data.SelectedMethod != nil {
		return data.SelectedMethod.Type
	}
	return ""
}

// getSession resolves the session for a request's payment_id. On a miss it
// asks the client to reload, since only a full page load can rebuild state.
func getSession(w http.ResponseWriter, r *http.Request) (*services.CheckoutSession, bool) {
	paymentID := r.FormValue("payment_id")
	if paymentID == "" {
		paymentID = r.URL.Query().Get("payment_id")
	}
	session, ok := GlobalSessionManager.Get(paymentID)
	if !ok {
		utils.Warn("checkout", "Request for unknown session", "payment_id", paymentID)
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func renderComponent(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		utils.Error("checkout", "Render failed", "error", err)
	}
}

// toast sends a showToast event without swapping any content.
func toast(w http.ResponseWriter, message, kind string) {
	payload, _ := json.Marshal(map[string]any{
		"showToast": map[string]string{"message": message, "type": kind},
	})
	w.Header().Set("HX-Trigger", string(payload))
	w.WriteHeader(http.StatusNoContent)
}
