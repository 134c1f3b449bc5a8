package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	contentgate "github.com/content-gate/content-gate"
	"github.com/content-gate/content-gate/pagecache"
	pagerenderer "github.com/content-gate/content-gate/pkg/page-renderer"
	sessionstore "github.com/content-gate/content-gate/pkg/session-store"
	"github.com/content-gate/content-gate/store"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	dbFilenameFlag     string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to site config file")
	flag.IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	flag.StringVar(&dbFilenameFlag, "db", "", "Content and cache DB file name (overrides config; empty for in-memory)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	if configFilenameFlag == "" {
		log.Fatal().Msg("Please specify site config file")
	}
	config, err := contentgate.LoadConfig(configFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}

	port := config.Port
	if portFlag != 0 {
		port = portFlag
	}
	if port == 0 {
		port = 8080
	}

	dbFilename := config.DB
	if dbFilenameFlag != "" {
		dbFilename = dbFilenameFlag
	}
	if dbFilename == "memory" {
		dbFilename = ""
	}

	gateConfig := contentgate.Config{
		Sessions:             sessionstore.NewMemoryStore(),
		Principal:            headerPrincipal,
		Logger:               &log.Logger,
		RawErrorsRequireAuth: config.RawErrorsRequireAuth,
		HeaderRules:          config.HeaderRules,
		ErrorPages: contentgate.ErrorPages{
			NotFound:     config.ErrorPages.NotFound,
			AccessDenied: config.ErrorPages.AccessDenied,
			ServerError:  config.ErrorPages.ServerError,
		},
		Metrics: contentgate.NewMetrics(prometheus.DefaultRegisterer),
	}

	if config.CacheTTL != "" {
		ttl, err := time.ParseDuration(config.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not parse cacheTTL")
		}
		gateConfig.CacheTTL = ttl
	}
	if config.RefreshInterval != "" {
		interval, err := time.ParseDuration(config.RefreshInterval)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not parse refreshInterval")
		}
		gateConfig.RefreshInterval = interval
	}

	// content and render cache share one sqlite file when a db file is
	// configured; otherwise everything lives in memory
	if dbFilename != "" {
		sqliteStore, err := store.NewSQLiteStore(dbFilename)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open content db")
		}
		seedSQLite(sqliteStore, config)
		gateConfig.Pages = sqliteStore
		gateConfig.Attachments = sqliteStore
		gateConfig.Redirects = sqliteStore
		gateConfig.Cache = pagecache.NewSQLiteCache(dbFilename)
	} else {
		memStore := store.NewMemoryStore()
		seedMemory(memStore, config)
		gateConfig.Pages = memStore
		gateConfig.Attachments = memStore
		gateConfig.Redirects = memStore
		gateConfig.Cache = pagecache.NewMemCache()
	}

	renderer, err := pagerenderer.New(config.Layouts)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not compile layouts")
	}
	gateConfig.Renderer = renderer

	gate := contentgate.New(gateConfig)

	router := chi.NewRouter()
	router.Use(sessionstore.Middleware)
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/*", gate)

	log.Info().Msgf("Serving content on port %v (%d pages configured)", port, len(config.Pages))
	err = http.ListenAndServe(fmt.Sprintf(":%d", port), router)

	if err != nil {
		panic(err)
	}
}

func seedSQLite(s *store.SQLiteStore, config contentgate.FileConfig) {
	for _, pc := range config.Pages {
		if err := s.SavePage(pc.Page()); err != nil {
			log.Fatal().Err(err).Str("path", pc.Path).Msg("Could not seed page")
		}
	}
	for _, ac := range config.Attachments {
		if err := s.SaveAttachment(ac.Attachment()); err != nil {
			log.Fatal().Err(err).Str("path", ac.Path).Msg("Could not seed attachment")
		}
	}
	for _, rc := range config.Redirects {
		if err := s.SaveRedirect(store.Redirect{FromPath: rc.From, ToPath: rc.To}); err != nil {
			log.Fatal().Err(err).Str("path", rc.From).Msg("Could not seed redirect")
		}
	}
}

func seedMemory(s *store.MemoryStore, config contentgate.FileConfig) {
	for _, pc := range config.Pages {
		s.SavePage(pc.Page())
	}
	for _, ac := range config.Attachments {
		s.SaveAttachment(ac.Attachment())
	}
	for _, rc := range config.Redirects {
		s.SaveRedirect(store.Redirect{FromPath: rc.From, ToPath: rc.To})
	}
}

// headerPrincipal trusts identity headers set by an authenticating
// front proxy: X-Auth-User names the caller and X-Auth-Capabilities
// carries a comma-separated capability list. Requests without the
// headers are anonymous.
func headerPrincipal(r *http.Request) contentgate.Principal {
	user := r.Header.Get("X-Auth-User")
	if user == "" {
		return contentgate.Anonymous{}
	}
	var capabilities []string
	if caps := r.Header.Get("X-Auth-Capabilities"); caps != "" {
		for _, c := range strings.Split(caps, ",") {
			if c = strings.TrimSpace(c); c != "" {
				capabilities = append(capabilities, c)
			}
		}
	}
	return contentgate.StaticPrincipal{
		Name:         user,
		LoggedIn:     true,
		Capabilities: capabilities,
	}
}
