package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/acme/autocert"

	"library-service/api"
	"library-service/auth"
	"library-service/config"
	"library-service/jobs"
	"library-service/library"
	"library-service/payments"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	log := cfg.Logger()

	authCfg, err := cfg.Auth()
	if err != nil {
		return err
	}
	verifier, err := auth.NewVerifier(authCfg)
	if err != nil {
		return err
	}

	var gateway library.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = payments.NewStripe(cfg.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payment intents will fail")
	}

	mgr, err := library.NewLibraryManager(library.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DBDSN,
		Policy:  cfg.Policy(),
		Gateway: gateway,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	defer mgr.Close()

	sweep := jobs.NewOverdueSweep(mgr.Store(), log.WithField("job", "overdue"))
	scheduler, err := jobs.Schedule(cfg.SweepSchedule, sweep, log)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	accessLog := log.WriterLevel(logrus.InfoLevel)
	defer accessLog.Close()

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.NewServer(mgr, verifier, log, api.Config{
			CORSOrigin: cfg.CORSOrigin,
			AccessLog:  accessLog,
		}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- listen(srv, cfg, log) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// listen serves plain HTTP, or HTTPS with Let's Encrypt certificates when a
// TLS domain is configured.
func listen(srv *http.Server, cfg *config.Config, log logrus.FieldLogger) error {
	var err error
	if cfg.TLSDomain == "" {
		log.WithField("addr", srv.Addr).Info("listening")
		err = srv.ListenAndServe()
	} else {
		m := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.TLSDomain),
			Cache:      autocert.DirCache(cfg.TLSCacheDir),
		}
		srv.TLSConfig = m.TLSConfig()
		go func() {
			// ACME http-01 challenges.
			if err := http.ListenAndServe(":80", m.HTTPHandler(nil)); err != nil {
				log.WithError(err).Error("acme challenge listener stopped")
			}
		}()
		log.WithFields(logrus.Fields{"addr": srv.Addr, "domain": cfg.TLSDomain}).Info("listening with TLS")
		err = srv.ListenAndServeTLS("", "")
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
