/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Seednode/higherlower/games/higherlower"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// joinURL is the link players open to join code.
func joinURL(cfg *Config, r *http.Request, code string) string {
	scheme := cfg.scheme()
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     cfg.prefix + "/",
		RawQuery: url.Values{"code": []string{code}}.Encode(),
	}

	return u.String()
}

func serveJoinQR(cfg *Config, engine *higherlower.Engine, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		code := p.ByName("code")

		if _, err := engine.Snapshot(r.Context(), code); err != nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			securityHeaders(cfg, w)
			w.WriteHeader(http.StatusNotFound)

			_, _ = io.WriteString(w, newPage("Not Found", "Game code not found."))

			return
		}

		png, err := qrcode.Encode(joinURL(cfg, r, code), qrcode.Medium, qrSize)
		if err != nil {
			errs <- err

			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: QR code for %s (%s) to %s in %s",
			code,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
