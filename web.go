/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/higherlower/games/higherlower"
	"github.com/julienschmidt/httprouter"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

// servePlain writes a short text/plain body and logs it under label.
func servePlain(cfg *Config, label string, body func() string, cache bool, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		data := body()

		if cache {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := io.WriteString(w, data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: %s (%s) to %s in %s",
			label,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func versionText() string {
	return "higherlower v" + releaseVersion + "\n"
}

func robotsText() string {
	return "User-agent: *\nDisallow: /\n"
}

func healthText() string {
	return "Ok\n"
}

// newRouter wires every route onto a fresh router. The engine must already be
// running.
func newRouter(cfg *Config, hub *Hub, engine *higherlower.Engine, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		logf(cfg, "ERROR: Recovered from handler panic: %v", i)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		_, _ = io.WriteString(w, newPage("Server Error", "An error has occurred. Please try again."))
	}

	mux.GET(cfg.prefix+"/healthz", servePlain(cfg, "Health check", healthText, false, errs))

	mux.GET(cfg.prefix+"/robots.txt", servePlain(cfg, "Robots page", robotsText, true, errs))

	mux.GET(cfg.prefix+"/version", servePlain(cfg, "Version page", versionText, false, errs))

	mux.GET(cfg.prefix+"/join/:code/qr", serveJoinQR(cfg, engine, errs))

	mux.GET(cfg.prefix+"/ws", serveWebSocket(cfg, hub, engine, newUpgrader(cfg)))

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	return mux
}

func newEngine(cfg *Config, hub *Hub) (*higherlower.Engine, error) {
	return higherlower.New(&higherlower.Config{
		Broadcaster:     hub,
		HostGracePeriod: cfg.hostGrace,
		CodeAttempts:    cfg.codeAttempts,
		Logf: func(format string, args ...any) {
			logf(cfg, format, args...)
		},
	})
}

func Serve(ctx context.Context, cfg *Config) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	logf(cfg, "START: higherlower v%s", releaseVersion)

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	hub := newHub(cfg)

	engine, err := newEngine(cfg, hub)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go engine.Run(ctx)

	errs := make(chan error, 64)

	go drainErrors(ctx, cfg, errs)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           newRouter(cfg, hub, engine, errs),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	listenErr := make(chan error, 1)

	go func() {
		logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)

		var err error
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		return err
	}

	logf(cfg, "SERVE: Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
