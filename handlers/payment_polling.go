package handlers

import (
	"net/http"

	"linkpay/templates/checkout"
	"linkpay/utils"
)

// CheckPaymentStatusHandler is the page's 5-second status probe. It reads
// session state only; the background poller owns the backend calls. On the
// settled transition it swaps itself inert and pushes the processing card
// into the content area.
func CheckPaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(w, r)
	if !ok {
		return
	}

	if session.Settled() {
		step, _ := session.ProcessingState()
		renderComponent(w, r, checkout.SettledPoll(buildView(session), string(step), session.ShortTimeLeft()))
		return
	}
	if session.Expired() {
		renderComponent(w, r, checkout.StatusPoll(session.ID(), true))
		return
	}
	renderComponent(w, r, checkout.StatusPoll(session.ID(), false))
}

// PaymentCountdownHandler is the 1-second countdown tick. Crossing zero
// fires the paymentExpired event exactly once, which makes the content area
// refetch itself in the expired state.
func PaymentCountdownHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(w, r)
	if !ok {
		return
	}

	timeLeft, justExpired := session.TickCountdown()
	if justExpired {
		w.Header().Set("HX-Trigger", `{"paymentExpired": true, "showToast": {"message": "This payment has expired", "type": "warning"}}`)
	}
	renderComponent(w, r, checkout.Countdown(session.ID(), timeLeft, session.Expired()))
}

// PaymentProcessingHandler advances the post-settlement animation and, once
// the received step has been shown, redirects to the success view. The
// redirect fires exactly once per session.
func PaymentProcessingHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(w, r)
	if !ok {
		return
	}

	step, redirect := session.ProcessingState()
	if redirect {
		utils.Info("checkout", "Redirecting to success view", "payment_id", session.ID())
		w.Header().Set("HX-Redirect", "/checkout/"+session.ID()+"/success")
		w.WriteHeader(http.StatusOK)
		return
	}
	renderComponent(w, r, checkout.ProcessingCard(buildView(session), string(step), session.ShortTimeLeft()))
}
