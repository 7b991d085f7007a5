/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in anonymous usage events and crash reports.
// Nothing is sent unless the user opted in and an endpoint is configured.
package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"doccanvas/internal/config"
	applog "doccanvas/internal/log"
)

const (
	envEventsURL = "DCV_TELEMETRY_URL"
	envCrashURL  = "DCV_CRASH_UPLOAD_URL"
	envTimeoutMS = "DCV_TELEMETRY_TIMEOUT_MS"
	envDebug     = "DCV_TELEMETRY_DEBUG"

	queueSize      = 64
	defaultTimeout = 1500 * time.Millisecond
)

// Config selects the endpoints. Without an EventsURL events are dropped
// even when OptIn is set; the same holds for CrashURL and crash reports.
type Config struct {
	OptIn     bool
	EventsURL string
	CrashURL  string
	Timeout   time.Duration
	// Debug logs every delivery attempt.
	Debug bool
}

// FromEnv reads DCV_TELEMETRY_OPT_IN, DCV_TELEMETRY_URL,
// DCV_CRASH_UPLOAD_URL, DCV_TELEMETRY_TIMEOUT_MS and DCV_TELEMETRY_DEBUG.
func FromEnv() Config {
	cfg := Config{
		OptIn:     truthy(os.Getenv(config.EnvTelemetryOptIn)),
		EventsURL: strings.TrimSpace(os.Getenv(envEventsURL)),
		CrashURL:  strings.TrimSpace(os.Getenv(envCrashURL)),
		Timeout:   defaultTimeout,
		Debug:     os.Getenv(envDebug) != "",
	}
	if ms, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envTimeoutMS))); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

// FromConfig is FromEnv with the opt-in decision taken from the user
// config, which already reflects the environment override.
func FromConfig(g config.GeneralConfig) Config {
	cfg := FromEnv()
	cfg.OptIn = g.TelemetryOptIn
	return cfg
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

type delivery struct {
	url         string
	contentType string
	body        []byte
}

// Client delivers payloads from a bounded queue on one goroutine. Sends
// never block the caller; a full queue drops the payload.
type Client struct {
	cfg     Config
	log     *slog.Logger
	http    *http.Client
	queue   chan delivery
	pending atomic.Int64
	stop    chan struct{}
	once    sync.Once
}

// New starts a client. Close stops its goroutine.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:   cfg,
		log:   applog.WithComponent("telemetry"),
		http:  &http.Client{Timeout: cfg.Timeout},
		queue: make(chan delivery, queueSize),
		stop:  make(chan struct{}),
	}
	go c.run()
	return c
}

// Enabled reports whether usage events will be delivered.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

func (c *Client) crashEnabled() bool { return c != nil && c.cfg.OptIn && c.cfg.CrashURL != "" }

func (c *Client) enqueue(d delivery) bool {
	c.pending.Add(1)
	select {
	case c.queue <- d:
		return true
	default:
		c.pending.Add(-1)
		if c.cfg.Debug {
			c.log.Debug("queue full, dropping", slog.String("url", d.url))
		}
		return false
	}
}

// Pending is the number of queued or in-flight deliveries.
func (c *Client) Pending() int { return int(c.pending.Load()) }

// Flush waits until every queued delivery finished, ctx is done or two
// request timeouts passed, whichever comes first.
func (c *Client) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	limit := time.NewTimer(2 * c.cfg.Timeout)
	defer limit.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for c.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-limit.C:
			return
		case <-tick.C:
		}
	}
}

// Close stops the delivery goroutine. Queued payloads are discarded.
func (c *Client) Close() { c.once.Do(func() { close(c.stop) }) }

func (c *Client) run() {
	for {
		select {
		case <-c.stop:
			return
		case d := <-c.queue:
			c.deliver(d)
			c.pending.Add(-1)
		}
	}
}

func (c *Client) deliver(d delivery) {
	req, err := http.NewRequest(http.MethodPost, d.url, bytes.NewReader(d.body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", d.contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		if c.cfg.Debug {
			c.log.Debug("delivery failed", slog.String("url", d.url), slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.Debug {
		c.log.Debug("delivered", slog.String("url", d.url), slog.Int("status", resp.StatusCode))
	}
}

// UploadCrash queues a crash report for the crash endpoint.
func (c *Client) UploadCrash(report []byte) {
	if !c.crashEnabled() || len(report) == 0 {
		return
	}
	c.enqueue(delivery{url: c.cfg.CrashURL, contentType: "text/plain; charset=utf-8", body: append([]byte(nil), report...)})
}

var (
	defMu     sync.Mutex
	defClient *Client
)

// NewDefault installs a package level client built from cfg, replacing
// any previous one.
func NewDefault(cfg Config) {
	c := New(cfg)
	defMu.Lock()
	old := defClient
	defClient = c
	defMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Default returns the package level client, creating it from the
// environment on first use.
func Default() *Client {
	defMu.Lock()
	defer defMu.Unlock()
	if defClient == nil {
		defClient = New(FromEnv())
	}
	return defClient
}

// Enabled reports whether the default client delivers usage events.
func Enabled() bool { return Default().Enabled() }

// UploadCrash queues a crash report on the default client.
func UploadCrash(report []byte) { Default().UploadCrash(report) }

// Flush drains the default client.
func Flush(ctx context.Context) { Default().Flush(ctx) }
