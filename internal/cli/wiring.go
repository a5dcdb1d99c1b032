package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leasesync/internal/config"
	"leasesync/internal/db"
	"leasesync/internal/dns"
	"leasesync/internal/dns/providers/pdns"
	"leasesync/internal/dns/providers/pihole"
	"leasesync/internal/history"
	"leasesync/internal/lease/unifi"
	"leasesync/internal/lock"
	"leasesync/internal/util"
)

// app is everything a command needs after startup
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	runner  *dns.Runner
	history *history.Store

	closers []io.Closer
	cleanup []func()
}

func (a *app) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

func loadConfig(path string) (*config.Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		return config.LoadFromINI(path)
	}
	return config.Load(path)
}

// newApp loads configuration and wires source, sink, lock and history
func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser := util.NewLogger(util.LogOptions{
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
		Verbose: opts.verbose,
	})
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}
	log := logrus.NewEntry(logger)

	if !cfg.FileLoaded {
		log.Warnf("Config file %q not found, using environment only", configName(opts.configPath))
	}

	source := unifi.NewClient(unifi.Config{
		Host:      cfg.UniFi.Host,
		Port:      cfg.UniFi.Port,
		APIToken:  cfg.UniFi.APIToken,
		Site:      cfg.UniFi.Site,
		VerifyTLS: cfg.UniFi.VerifyTLS,
		Timeout:   cfg.HTTPTimeout(),
	}, log)

	sink, err := newSink(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	reconciler := dns.NewReconciler(source, sink, dns.ReconcilerConfig{
		Zone:           cfg.DNSDomain,
		AllowedSubnets: cfg.AllowedSubnets,
		DeniedSubnets:  cfg.DeniedSubnets,
	}, log)

	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		client, err := lock.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client)
		locker = lock.NewRedis(client, time.Duration(cfg.LockTTLSec)*time.Second, log)
		log.Infof("Using Redis lock at %s", cfg.Redis.Addr)
	}

	var recorder dns.Recorder
	if cfg.HistoryDSN != "" {
		conn, err := openHistory(cfg.HistoryDSN, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.cleanup = append(a.cleanup, func() { db.Close(conn) })
		a.history = history.NewStore(conn)
		recorder = a.history
	}

	a.runner = dns.NewRunner(reconciler, locker, recorder, log)
	return a, nil
}

func newSink(cfg *config.Config, log *logrus.Entry) (dns.Sink, error) {
	switch cfg.DNSProvider {
	case config.ProviderPDNS:
		return pdns.NewProvider(pdns.Config{
			Endpoint: cfg.PDNS.URL,
			APIKey:   cfg.PDNS.APIKey,
			ServerID: cfg.PDNS.ServerID,
			Zone:     cfg.PDNS.Zone,
			TTL:      cfg.PDNS.TTL,
		}, &http.Client{Timeout: cfg.HTTPTimeout()}, log)
	default:
		return pihole.NewPiholeProvider(pihole.Config{
			Host:     cfg.Pihole.Host,
			Scheme:   cfg.Pihole.Scheme,
			Password: cfg.Pihole.Password,
			Timeout:  cfg.HTTPTimeout(),
		}, log), nil
	}
}

func openHistory(dsn string, log *logrus.Entry) (*gorm.DB, error) {
	conn, err := db.OpenMySQL(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, log.WithField("component", "history")); err != nil {
		db.Close(conn)
		return nil, err
	}
	return conn, nil
}

func configName(path string) string {
	if path == "" {
		return config.DefaultEnvFile
	}
	return path
}
