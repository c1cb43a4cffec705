// Package api provides the HTTP surface and the main server logic for
// DocuBridge.
//
// It exposes the Telegram webhook, an optional Twilio SMS webhook, a lead
// listing endpoint and health checks, and it runs the response loops that
// feed inbound messages into the flow controller.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/islogix/docubridge/internal/extract"
	"github.com/islogix/docubridge/internal/flow"
	"github.com/islogix/docubridge/internal/genai"
	"github.com/islogix/docubridge/internal/messaging"
	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/notify"
	"github.com/islogix/docubridge/internal/store"
	"github.com/islogix/docubridge/internal/telegram"
	"github.com/islogix/docubridge/internal/twiliosms"
)

// Default server configuration.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	// DefaultTurnTimeout bounds one dialog turn, including model calls.
	DefaultTurnTimeout = 90 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr          string
	WebhookURL    string
	WebhookSecret string
	AdminChatID   string
	MirrorToAdmin bool
	TwilioEnabled bool
	TurnTimeout   time.Duration
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the HTTP listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithWebhookURL sets the public base URL the Telegram webhook is registered
// under. Empty disables self-registration.
func WithWebhookURL(url string) Option {
	return func(o *Opts) { o.WebhookURL = url }
}

// WithWebhookSecret sets the secret path segment of the webhook endpoint.
func WithWebhookSecret(secret string) Option {
	return func(o *Opts) { o.WebhookSecret = secret }
}

// WithAdminChatID sets the operator chat that receives lead notifications.
func WithAdminChatID(id string) Option {
	return func(o *Opts) { o.AdminChatID = id }
}

// WithAdminMirror enables mirroring every exchange to the operator chat.
func WithAdminMirror() Option {
	return func(o *Opts) { o.MirrorToAdmin = true }
}

// WithTwilio enables the Twilio SMS transport alongside Telegram.
func WithTwilio() Option {
	return func(o *Opts) { o.TwilioEnabled = true }
}

// WithTurnTimeout overrides the per-turn deadline of the response loops.
func WithTurnTimeout(d time.Duration) Option {
	return func(o *Opts) { o.TurnTimeout = d }
}

// Server bundles the HTTP handlers with the services they dispatch to.
type Server struct {
	st            store.Store
	tgService     *messaging.TelegramService
	smsService    *messaging.TwilioService
	controller    *flow.Controller
	smsController *flow.Controller
	webhookSecret string
	addr          string
	turnTimeout   time.Duration
}

// NewServer assembles a server from already-constructed services.
// smsService and smsController may be nil when the SMS transport is disabled.
func NewServer(st store.Store, tg *messaging.TelegramService, sms *messaging.TwilioService, ctrl, smsCtrl *flow.Controller, opts Opts) *Server {
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	turnTimeout := opts.TurnTimeout
	if turnTimeout <= 0 {
		turnTimeout = DefaultTurnTimeout
	}
	return &Server{
		st:            st,
		tgService:     tg,
		smsService:    sms,
		controller:    ctrl,
		smsController: smsCtrl,
		webhookSecret: opts.WebhookSecret,
		addr:          addr,
		turnTimeout:   turnTimeout,
	}
}

// Run constructs every module from its options, wires them together and
// serves HTTP until SIGINT/SIGTERM. Configuration errors are fatal; runtime
// degradation (no model key, no Twilio credentials) is logged and tolerated.
func Run(telegramOpts []telegram.Option, storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	var opts Opts
	for _, opt := range apiOpts {
		opt(&opts)
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	// The model tier is optional: without a key the bot still runs the
	// wizard, with heuristics only and fixed chat replies.
	var gaClient genai.ClientInterface
	if client, err := genai.NewClient(genaiOpts...); err != nil {
		slog.Warn("Server.Run: language model disabled", "error", err)
	} else {
		gaClient = client
	}

	tgClient, err := telegram.NewClient(telegramOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram client: %w", err)
	}
	webhookURL := ""
	if opts.WebhookURL != "" {
		webhookURL = strings.TrimSuffix(opts.WebhookURL, "/") + "/webhook/" + opts.WebhookSecret
	}
	tgService := messaging.NewTelegramService(tgClient, webhookURL)

	extractor := extract.New(gaClient)
	notifier := notify.NewAdminNotifier(tgService, opts.AdminChatID, opts.MirrorToAdmin)
	controller := flow.NewController(st, tgService, extractor, gaClient, notifier)

	// Twilio SMS is a secondary transport sharing the store; leads arriving
	// by SMS are still announced in the operator's Telegram chat.
	var smsService *messaging.TwilioService
	var smsController *flow.Controller
	if opts.TwilioEnabled {
		twilioClient, err := twiliosms.NewClient()
		if err != nil {
			slog.Warn("Server.Run: Twilio transport disabled", "error", err)
		} else {
			smsService = messaging.NewTwilioService(twilioClient)
			smsController = flow.NewController(st, smsService, extractor, gaClient, notifier)
		}
	}

	server := NewServer(st, tgService, smsService, controller, smsController, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tgService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start Telegram service: %w", err)
	}
	defer tgService.Stop()
	go server.responseLoop(ctx, tgService, controller)
	go server.receiptLoop(ctx, "telegram", tgService)
	if smsService != nil {
		if err := smsService.Start(ctx); err != nil {
			return fmt.Errorf("failed to start Twilio service: %w", err)
		}
		defer smsService.Stop()
		go server.responseLoop(ctx, smsService, smsController)
		go server.receiptLoop(ctx, "twilio", smsService)
	}

	httpServer := &http.Server{Addr: server.addr, Handler: server.routes()}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("DocuBridge API running", "addr", server.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Server.Run: shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// buildStore selects the backend from the configured DSN: empty means
// in-memory, otherwise SQLite or Postgres by DSN shape.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var opts store.Opts
	for _, opt := range storeOpts {
		opt(&opts)
	}
	if opts.DSN == "" {
		slog.Info("Server.buildStore: no DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(opts.DSN) == "postgres" {
		slog.Info("Server.buildStore: using Postgres store")
		return store.NewPostgresStore(storeOpts...)
	}
	slog.Info("Server.buildStore: using SQLite store", "path", opts.DSN)
	return store.NewSQLiteStore(storeOpts...)
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.rootHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/webhook/", s.webhookHandler)
	mux.HandleFunc("/twilio/inbound", s.twilioInboundHandler)
	mux.HandleFunc("/leads", s.leadsHandler)
	return mux
}

// responseLoop consumes inbound messages from a transport and handles them
// one at a time, so per-conversation state transitions stay ordered.
func (s *Server) responseLoop(ctx context.Context, svc messaging.Service, ctrl *flow.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-svc.Responses():
			if !ok {
				return
			}
			turnCtx, cancel := context.WithTimeout(ctx, s.turnTimeout)
			if err := ctrl.HandleUtterance(turnCtx, resp.From, resp.Body); err != nil {
				slog.Error("Server.responseLoop: turn failed", "from", resp.From, "error", err)
			}
			cancel()
		}
	}
}

// receiptLoop drains a transport's delivery receipts. Failed deliveries are
// the signal the operator needs for unreachable recipients.
func (s *Server) receiptLoop(ctx context.Context, transport string, svc messaging.Service) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-svc.Receipts():
			if !ok {
				return
			}
			if r.Status == models.MessageStatusFailed {
				slog.Warn("Server.receiptLoop: delivery failed", "transport", transport, "to", r.To)
				continue
			}
			slog.Debug("Server.receiptLoop: delivery receipt", "transport", transport, "to", r.To, "status", r.Status)
		}
	}
}
