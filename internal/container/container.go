package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/roadwatch/warning-service/config"
	"github.com/roadwatch/warning-service/internal/infrastructure/weather"
	"github.com/roadwatch/warning-service/internal/observability"
	"github.com/roadwatch/warning-service/pkg/helpers"
)

// App-level container sharing constructed singletons across packages so the
// router can auto-wire modules from them.

var (
	cfg           *config.Config
	logger        *logrus.Logger
	pgPool        *pgxpool.Pool
	clock         clockwork.Clock
	metrics       *observability.Metrics
	weatherClient *weather.Client
	rabbitPub     *helpers.RabbitPublisher
	esClient      *elasticsearch.Client
)

func SetConfig(c *config.Config)              { cfg = c }
func GetConfig() *config.Config               { return cfg }
func SetLogger(l *logrus.Logger)              { logger = l }
func GetLogger() *logrus.Logger               { return logger }
func SetPGPool(p *pgxpool.Pool)               { pgPool = p }
func GetPGPool() *pgxpool.Pool                { return pgPool }
func SetClock(c clockwork.Clock)              { clock = c }
func SetMetrics(m *observability.Metrics)     { metrics = m }
func GetMetrics() *observability.Metrics      { return metrics }
func SetWeather(w *weather.Client)            { weatherClient = w }
func GetWeather() *weather.Client             { return weatherClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

func GetClock() clockwork.Clock {
	if clock != nil {
		return clock
	}
	return clockwork.NewRealClock()
}
