package handlers

import (
	"context"
	"net/http"

	"linkpay/services"
	"linkpay/templates"
	"linkpay/templates/checkout"
	"linkpay/utils"
)

// SelectMethodHandler switches the active payment method. The switch is
// guarded by a per-session token so a slow backend response for an earlier
// switch can never overwrite a later selection.
func SelectMethodHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(w, r)
	if !ok {
		return
	}

	target := templates.PaymentMethodType(r.FormValue("method"))
	token, ok := session.BeginMethodSwitch(target)
	if !ok {
		// Same method or already settled; re-render what we have
		renderComponent(w, r, checkout.PaymentContent(buildDetailsView(session)))
		return
	}

	utils.Info("checkout", "Switching payment method", "payment_id", session.ID(), "method", string(target))

	data, err := Gateway.FetchDetails(r.Context(), session.ID(), target)
	applied := session.CompleteMethodSwitch(token, data, err)

	if err != nil {
		utils.Error("checkout", "Method switch fetch failed", "payment_id", session.ID(), "method", string(target), "error", err)
		toast(w, services.ErrorMessage(err, "Could not switch payment method"), "error")
		return
	}
	if !applied {
		// A newer switch superseded this one; its response will render
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Expiry stops the poller, so a switch away from an expired method has
	// to bring it back up
	session.StartPolling(context.Background(), Gateway)

	renderComponent(w, r, checkout.PaymentContentWithSelector(buildDetailsView(session)))
}

// PaymentDetailsHandler re-renders the details fragment for the current
// state. Used by the expiry trigger and the processing view's "show
// details" toggle.
func PaymentDetailsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(w, r)
	if !ok {
		return
	}
	renderComponent(w, r, checkout.PaymentContent(buildDetailsView(session)))
}

// ConfirmPaymentHandler handles "I have Paid": one immediate status check
// against the backend. Settlement moves the page into processing; anything
// else is a toast and the visitor stays put.
func ConfirmPaymentHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(w, r)
	if !ok {
		return
	}
	if session.Expired() {
		toast(w, "This payment has expired. Refresh it to get a new one.", "warning")
		return
	}

	orderID := session.Data().OrderID
	status, err := Gateway.CheckStatus(r.Context(), orderID)
	if err != nil {
		utils.Error("checkout", "Manual status check failed", "order_id", orderID, "error", err)
		toast(w, services.ErrorMessage(err, "Could not verify payment. Please try again."), "error")
		return
	}

	if !status.IsSettled() {
		utils.Info("checkout", "Manual check: not settled yet", "order_id", orderID, "status", string(status))
		toast(w, "Payment not yet received. Please complete the transfer and try again.", "info")
		return
	}

	session.Settle()
	step, _ := session.ProcessingState()
	renderComponent(w, r, checkout.ProcessingCard(buildView(session), string(step), session.ShortTimeLeft()))
}

// RefreshPaymentHandler requests a fresh instrument for an expired payment
// and, on success, swaps in the new details and restarts the pollers.
func RefreshPaymentHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(w, r)
	if !ok {
		return
	}

	method := selectedType(session.Data())
	data, err := Gateway.Refresh(r.Context(), session.ID(), method)
	if err != nil {
		utils.Error("checkout", "Payment refresh failed", "payment_id", session.ID(), "error", err)
		toast(w, services.ErrorMessage(err, "Could not refresh payment. Please try again."), "error")
		return
	}

	session.ApplyRefresh(context.Background(), Gateway, data)
	utils.Info("checkout", "Payment refreshed", "payment_id", session.ID(), "method", string(method))

	renderComponent(w, r, checkout.RefreshedContent(buildDetailsView(session)))
}

// CancelPaymentHandler abandons the checkout and sends the visitor to the
// merchant's callback URL.
func CancelPaymentHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(w, r)
	if !ok {
		return
	}

	target := session.Data().CallbackURL
	if target == "" {
		target = "/"
	}

	GlobalSessionManager.Remove(session.ID())
	utils.Info("checkout", "Payment cancelled by visitor", "payment_id", session.ID())

	w.Header().Set("HX-Redirect", target)
	w.WriteHeader(http.StatusOK)
}
