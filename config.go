package scorerestorer

import (
	"log/slog"
	"time"

	"github.com/Keksclan/goScoreRestorer/cvar"
	"github.com/Keksclan/goScoreRestorer/internal/core"
	"github.com/Keksclan/goScoreRestorer/record"
	"github.com/Keksclan/goScoreRestorer/tracing"
	"github.com/prometheus/client_golang/prometheus"
)

// config holds the internal configuration assembled via functional options.
type config struct {
	middlewares core.Ordered[Middleware]

	vars       cvar.Store
	clock      func() time.Time
	logger     *slog.Logger
	registerer prometheus.Registerer
	tracing    *tracing.Config
	recovery   bool

	// maxRecords > 0 selects the ristretto-backed store.
	maxRecords int64
	recordOpts []record.Option

	// queueSize > 0 enables asynchronous Submit.
	queueSize int
}
