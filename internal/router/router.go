package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "health-record-sharing/docs"
	"health-record-sharing/internal/adapters/blob/local"
	mem "health-record-sharing/internal/adapters/storage/memory"
	pg "health-record-sharing/internal/adapters/storage/postgres"
	"health-record-sharing/internal/domain/accessrequests"
	"health-record-sharing/internal/domain/documents"
	"health-record-sharing/internal/domain/identity"
	"health-record-sharing/internal/domain/visibility"
	"health-record-sharing/internal/middleware"
	"health-record-sharing/internal/platform/httpjson"
	"health-record-sharing/internal/platform/logger"
	"health-record-sharing/internal/ports/auth"
	"health-record-sharing/internal/ports/blobstore"
	"health-record-sharing/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	defaultUploadsDir    = "uploads"
	defaultUploadsPrefix = "/uploads"
)

type Options struct {
	AuthVerifier auth.AuthVerifier    // puede ser nil (modo dev)
	TokenIssuer  identity.TokenIssuer // nil => login sin token

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: si no viene, se guardan en disco (UploadsDir) y se sirven en UploadsURLPrefix.
	Blob             blobstore.Store
	UploadsDir       string
	UploadsURLPrefix string
	MaxUploadBytes   int64

	Publisher notify.Publisher // nil => no se publican eventos
	Logger    logger.Logger

	MaxRequests    int // por IP y por segundo; 0 => sin límite
	AllowedOrigins []string
}

// servable lo implementa el blob store local.
type servable interface {
	Handler() http.Handler
	URLPrefix() string
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	blobs := opts.Blob
	if blobs == nil {
		dir := opts.UploadsDir
		if dir == "" {
			dir = defaultUploadsDir
		}
		prefix := opts.UploadsURLPrefix
		if prefix == "" {
			prefix = defaultUploadsPrefix
		}
		store, err := local.New(dir, prefix)
		if err != nil {
			return nil, fmt.Errorf("uploads store: %w", err)
		}
		blobs = store
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Debug-User-ID", "X-Debug-Role"},
		ExposedHeaders: []string{chimw.RequestIDHeader},
		MaxAge:         300,
	}))
	if opts.MaxRequests > 0 {
		r.Use(httprate.LimitByIP(opts.MaxRequests, time.Second))
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	if s, ok := blobs.(servable); ok {
		r.Handle(s.URLPrefix()+"/*", s.Handler())
	}

	var (
		userRepo     identity.Repository
		docRepo      documents.Repository
		requestsRepo accessrequests.Repository
	)

	if opts.DB != nil {
		userRepo = pg.NewUsersRepo(opts.DB)
		docRepo = pg.NewDocumentsRepo(opts.DB)
		requestsRepo = pg.NewAccessRequestsRepo(opts.DB)
	} else {
		userRepo = mem.NewUserRepo()
		docRepo = mem.NewDocumentRepo()
		requestsRepo = mem.NewAccessRequestRepo()
	}

	// Services por módulo
	usersSvc := identity.NewService(userRepo)
	requestsSvc := accessrequests.NewService(requestsRepo, usersSvc, opts.Publisher, log.With(map[string]any{"module": "accessrequests"}))
	gate := visibility.NewGate(requestsSvc, usersSvc)
	docsSvc := documents.NewService(docRepo, blobs, usersSvc)

	// Rutas por módulo
	identity.RegisterRoutes(r, usersSvc, opts.TokenIssuer, log.With(map[string]any{"module": "identity"}))
	accessrequests.RegisterRoutes(r, requestsSvc, usersSvc, log.With(map[string]any{"module": "accessrequests"}))
	documents.RegisterRoutes(r, docsSvc, documents.Deps{
		Patients:       usersSvc,
		Gate:           gate,
		Log:            log.With(map[string]any{"module": "documents"}),
		MaxUploadBytes: opts.MaxUploadBytes,
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Error(w, http.StatusNotFound, "not found")
	})

	return r, nil
}
