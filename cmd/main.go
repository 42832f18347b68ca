/*
Package main is the entry point for the liveroom demo client.

It loads configuration, initializes the global logging system, signs in to the
collaboration server, starts the local status server, and — when a demo room is
configured — joins it and publishes synthetic pointer movement so the cursor
pipeline can be observed end to end. It handles operating system interrupt
signals (SIGINT, SIGTERM) for a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liveroom/internal/app/client"
	"liveroom/internal/configs"
	"liveroom/internal/handler"
	"liveroom/internal/pkg/logx"
)

const (
	// frameInterval approximates one display refresh for the synthetic
	// pointer sampler.
	frameInterval = 16 * time.Millisecond

	// joinTimeout bounds the wait for a join acknowledgment.
	joinTimeout = 10 * time.Second

	// directoryWait is how long the demo waits for the first directory
	// push before creating its room.
	directoryWait = 2 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("server_url", cfg.ServerURL).
		Str("socket_url", cfg.SocketURL).
		Str("status_addr", cfg.StatusAddr).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Assemble the collaboration client
	cl := client.New(cfg)

	// Sign in: a persisted token wins over credentials
	if cfg.Token != "" {
		if customErr := cl.SetToken(cfg.Token); customErr != nil {
			logx.Fatal(customErr, "Persisted token rejected")
		}
	} else {
		if customErr := cl.Login(ctx, cfg.Email, cfg.Password); customErr != nil {
			logx.Fatal(customErr, "Login failed")
		}
	}

	// Setup the local status server
	deps := &handler.AppDeps{Client: cl, Config: cfg}
	server := &http.Server{
		Addr:         cfg.StatusAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Status server starting on http://%s", cfg.StatusAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Status server failed to start")
		}
	}()

	if cfg.DemoRoom != "" {
		go runDemo(ctx, cl, cfg.DemoRoom)
	}

	// Wait for interrupt signal to gracefully shut down with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Status server forced to shutdown")
	}

	if roomID, ok := cl.Session.CurrentRoomID(); ok {
		cl.Session.LeaveRoom(roomID)
	}
	cl.Close()

	logx.Info("Client gracefully stopped.")
}

// runDemo joins (creating if necessary) the named room and publishes a
// synthetic pointer orbit until the context ends.
func runDemo(ctx context.Context, cl *client.Client, roomName string) {
	// Give the server a moment to push the directory snapshot.
	select {
	case <-time.After(directoryWait):
	case <-ctx.Done():
		return
	}

	target, found := findRoomByName(cl, roomName)
	if !found {
		if customErr := cl.Session.CreateRoom(roomName, "", false); customErr != nil {
			logx.Error(customErr, "Demo room creation failed", "room_name", roomName)
			return
		}

		// The authoritative entry arrives via the directory push.
		deadline := time.Now().Add(directoryWait)
		for time.Now().Before(deadline) {
			if target, found = findRoomByName(cl, roomName); found {
				break
			}
			select {
			case <-time.After(100 * time.Millisecond):
			case <-ctx.Done():
				return
			}
		}
		if !found {
			logx.Warn("Demo room never appeared in the directory", "room_name", roomName)
			return
		}
	}

	joinCtx, cancel := context.WithTimeout(ctx, joinTimeout)
	outcome := cl.Session.JoinRoom(joinCtx, target, "")
	cancel()

	if !outcome.Success {
		logx.Error(outcome.Err, "Demo join failed", "room_id", target)
		return
	}

	logx.Info("Demo joined room, publishing synthetic movement", "room_id", target)

	// Sample a slow pointer orbit once per frame, like a render loop would.
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ticker.C:
			t := time.Since(start).Seconds()
			x := 400 + 200*math.Cos(t/2)
			y := 300 + 150*math.Sin(t/3)
			cl.Cursors.Track(x, y)

		case <-ctx.Done():
			cl.Cursors.PointerLeave()
			return
		}
	}
}

// findRoomByName scans the directory for a room with the given name.
func findRoomByName(cl *client.Client, name string) (roomID string, found bool) {
	for _, r := range cl.Directory.Rooms() {
		if r.Name == name {
			return r.ID, true
		}
	}
	return "", false
}
