package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"log"
	"math/big"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"linkpay/config"
	"linkpay/handlers"
	"linkpay/services"
	"linkpay/utils"
)

// Initialize the application
func init() {
	if err := config.Load(); err != nil {
		log.Fatal(err)
	}

	dataDir := config.Config.DataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir
	}
	os.MkdirAll(dataDir, 0755)

	store, err := services.NewFileStore(dataDir)
	if err != nil {
		log.Fatalf("Failed to initialize data store: %v", err)
	}

	gateway := services.NewClient(config.GetAPIBaseURL(), config.Config.DefaultMerchantLogo)
	handlers.Init(gateway, store)

	log.Printf("Payment backend: %s", config.GetAPIBaseURL())
}

// generateSelfSignedCert creates a self-signed certificate for localhost
func generateSelfSignedCert() (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"LinkPay Development"},
			Country:      []string{"US"},
		},
		NotBefore:   time.Now(),
		NotAfter:    time.Now().Add(365 * 24 * time.Hour), // 1 year
		KeyUsage:    x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1)},
		DNSNames:    []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}

	return tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  priv,
	}, nil
}

// shouldUseHTTPS determines if HTTPS should be used based on websiteName config
func shouldUseHTTPS() bool {
	websiteName := strings.TrimSpace(config.Config.WebsiteName)

	// Self-signed HTTPS when no domain configured or running on localhost
	return websiteName == "" || websiteName == "localhost"
}

func main() {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	// Page routes
	mux.HandleFunc("GET /checkout/{id}", handlers.CheckoutPageHandler)
	mux.HandleFunc("GET /checkout/{id}/success", handlers.SuccessPageHandler)

	// Fragment routes
	mux.HandleFunc("GET /payment-details", handlers.PaymentDetailsHandler)
	mux.HandleFunc("POST /select-method", handlers.SelectMethodHandler)
	mux.HandleFunc("POST /confirm-payment", handlers.ConfirmPaymentHandler)
	mux.HandleFunc("POST /refresh-payment", handlers.RefreshPaymentHandler)
	mux.HandleFunc("POST /cancel-payment", handlers.CancelPaymentHandler)

	// Polling endpoints
	mux.HandleFunc("GET /check-payment-status", handlers.CheckPaymentStatusHandler)
	mux.HandleFunc("GET /payment-countdown", handlers.PaymentCountdownHandler)
	mux.HandleFunc("GET /payment-processing", handlers.PaymentProcessingHandler)

	// Abandoned sessions pile up timers; sweep them out periodically
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := handlers.GlobalSessionManager.CleanupStale(config.SessionTTL); n > 0 {
				utils.Info("main", "Cleaned up stale checkout sessions", "count", n)
			}
		}
	}()

	port := config.Config.Port
	if port == "" {
		port = config.DefaultPort
	}

	if shouldUseHTTPS() {
		log.Printf("No domain configured (websiteName: '%s') - starting HTTPS server on port %s for local testing...",
			config.Config.WebsiteName, port)
		log.Printf("You will need to accept the browser warning for the self-signed certificate")
		log.Printf("Access checkout pages at: https://localhost:%s/checkout/<payment-link-id>", port)

		cert, err := generateSelfSignedCert()
		if err != nil {
			log.Fatalf("Failed to generate self-signed certificate: %v", err)
		}

		server := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
			TLSConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
			},
		}

		log.Fatal(server.ListenAndServeTLS("", ""))
	} else {
		log.Printf("Domain configured (websiteName: '%s') - starting HTTP server on port %s behind a proxy...",
			config.Config.WebsiteName, port)
		log.Printf("Local HTTP access: http://localhost:%s", port)

		log.Fatal(http.ListenAndServe(":"+port, mux))
	}
}
