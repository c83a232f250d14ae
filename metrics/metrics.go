// Package metrics exports game statistics in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"termtris/tetris"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements tetris.Listener.
type Collector struct {
	GamesStarted  prometheus.Counter
	GamesOver     prometheus.Counter
	PiecesSpawned *prometheus.CounterVec
	LineClears    *prometheus.CounterVec
	LinesRemoved  prometheus.Counter
	Points        prometheus.Counter
	Level         prometheus.Gauge
	FinalScore    prometheus.Histogram
}

var _ tetris.Listener = (*Collector)(nil)

func New(namespace string, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Number of games started",
		}),
		GamesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_over_total",
			Help:      "Number of games that reached game over",
		}),
		PiecesSpawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pieces_spawned_total",
			Help:      "Number of pieces spawned by shape",
		}, []string{"shape"}),
		LineClears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "line_clears_total",
			Help:      "Number of line clear events by rows removed at once",
		}, []string{"lines"}),
		LinesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_removed_total",
			Help:      "Number of rows removed",
		}),
		Points: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_total",
			Help:      "Points awarded for removed rows",
		}),
		Level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level",
			Help:      "Level of the running game",
		}),
		FinalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Score at game over",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 10),
		}),
	}

	for _, m := range []prometheus.Collector{
		c.GamesStarted,
		c.GamesOver,
		c.PiecesSpawned,
		c.LineClears,
		c.LinesRemoved,
		c.Points,
		c.Level,
		c.FinalScore,
	} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return c, nil
}

func (c *Collector) GameStarted() {
	c.GamesStarted.Inc()
	c.Level.Set(1)
}

func (c *Collector) PieceSpawned(s tetris.ShapeID) {
	c.PiecesSpawned.WithLabelValues(s.String()).Inc()
}

func (c *Collector) LinesCleared(lines, points int) {
	c.LineClears.WithLabelValues(strconv.Itoa(lines)).Inc()
	c.LinesRemoved.Add(float64(lines))
	c.Points.Add(float64(points))
}

func (c *Collector) LevelUp(level int) { c.Level.Set(float64(level)) }

func (c *Collector) GameOver(score int) {
	c.GamesOver.Inc()
	c.FinalScore.Observe(float64(score))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, l *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("unable to shut down metrics server", slog.String("error", err.Error()))
		}
	}()

	l.Info("serving metrics", slog.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
