package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/tablemate/tablemate-web/backend"
	"github.com/tablemate/tablemate-web/internal/config"
	"github.com/tablemate/tablemate-web/notify"
	"github.com/tablemate/tablemate-web/server"
	"github.com/tablemate/tablemate-web/session"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	store, cleanup, err := newSessionStore(c)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer cleanup()

	client := backend.New(c.GetBackendBaseURL(), c.GetBackendTimeout())
	notifier := newNotifier(c)

	handler, err := server.New(c, store, client, notifier)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// newSessionStore builds the configured store. The sqlite store also gets a
// background sweep so lapsed sessions do not accumulate on disk.
func newSessionStore(c config.Config) (session.Store, func(), error) {
	if c.GetSessionStore() != "sqlite" {
		return session.NewInMemoryStore(), func() {}, nil
	}

	store, err := session.NewSQLiteStore(c.GetSessionDBPath())
	if err != nil {
		return nil, nil, err
	}

	done := make(chan struct{})
	go sweepExpiredSessions(store, done)

	cleanup := func() {
		close(done)
		if err := store.Close(); err != nil {
			log.Printf("Error closing session store: %s\n", err)
		}
	}
	return store, cleanup, nil
}

func sweepExpiredSessions(store *session.SQLiteStore, done <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := store.DeleteExpired(context.Background()); err != nil {
				log.Printf("Error sweeping expired sessions: %s\n", err)
			}
		case <-done:
			return
		}
	}
}

func newNotifier(c config.Config) notify.Sender {
	if key := c.GetResendAPIKey(); key != "" {
		return notify.NewResendSender(key, c.GetEmailFrom())
	}
	return notify.NewNoopSender()
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
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

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
