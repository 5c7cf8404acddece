// Command mockapi is a local stand-in for the custody platform API, used
// for developing the console without backend access. It issues HS256
// tokens, rotates refresh tokens, and serves paginated fixtures.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/opencustody/consolekit/internal/config"
)

func main() {
	_ = godotenv.Load()
	if err := run(); err != nil {
		log.Fatalf("Error running mock API: %s\n", err)
	}
	log.Printf("Mock API stopped\n")
}

func run() error {
	port := config.GetEnv("MOCK_API_PORT", "8080")

	srv := newServer()
	router := mux.NewRouter()
	router.HandleFunc("/auth/signin", srv.signIn).Methods(http.MethodPost)
	router.HandleFunc("/auth/signin/2fa", srv.secondFactor).Methods(http.MethodPost)
	router.HandleFunc("/auth/refresh", srv.refresh).Methods(http.MethodPost)
	router.HandleFunc("/logout", srv.logout).Methods(http.MethodPost)

	authed := router.NewRoute().Subrouter()
	authed.Use(srv.requireToken)
	authed.HandleFunc("/clients", listHandler(srv.clients)).Methods(http.MethodGet)
	authed.HandleFunc("/transactions", listHandler(srv.transactions)).Methods(http.MethodGet)
	authed.HandleFunc("/kyc/requests", listHandler(srv.kycRequests)).Methods(http.MethodGet)
	authed.HandleFunc("/kyc/requests/{id}/approve", srv.approveKYC).Methods(http.MethodPost)

	server := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		log.Printf("Mock API listening on %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server.ListenAndServe: %s\n", err)
		}
	}()

	waitForStopSignal()
	return shutdown(server)
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
