// ABOUTME: Prometheus collector for player, pool and encoder statistics
// ABOUTME: Snapshots are taken at scrape time so the audio path stays untouched
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/buffer"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/encode"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/player"
	"github.com/decred/slog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pcmpipe"

// PlayerSource is implemented by *player.Player
type PlayerSource interface {
	Stats() player.Stats
}

// PoolSource is implemented by *buffer.Pool
type PoolSource interface {
	Stats() buffer.Stats
}

// EncoderSource is implemented by *encode.Encoder
type EncoderSource interface {
	Stats() encode.Stats
}

type desc struct {
	d  *prometheus.Desc
	vt prometheus.ValueType
}

func newDesc(subsystem, name, help string, vt prometheus.ValueType) desc {
	return desc{
		d:  prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil),
		vt: vt,
	}
}

// Collector exports whichever sources are set. Nil sources are skipped.
type Collector struct {
	Player  PlayerSource
	Pool    PoolSource
	Encoder EncoderSource

	queued, capacity, written, played, silence, rejected, dropped, underruns, callbacks desc

	allocated, reused, returned, outstanding desc

	frames, packets, bytesIn, bytesOut, encodeErrors desc
}

// NewCollector builds a collector over the given sources
func NewCollector(p PlayerSource, pool PoolSource, enc EncoderSource) *Collector {
	const (
		gauge   = prometheus.GaugeValue
		counter = prometheus.CounterValue
	)
	return &Collector{
		Player:  p,
		Pool:    pool,
		Encoder: enc,

		queued:    newDesc("player", "queued_bytes", "Unread bytes in the playback queue.", gauge),
		capacity:  newDesc("player", "capacity_bytes", "Current playback queue store size.", gauge),
		written:   newDesc("player", "written_bytes_total", "Bytes accepted by QueueData.", counter),
		played:    newDesc("player", "played_bytes_total", "Queued bytes handed to the device.", counter),
		silence:   newDesc("player", "silence_bytes_total", "Zero bytes inserted on underrun.", counter),
		rejected:  newDesc("player", "rejected_bytes_total", "Bytes refused because the queue was full.", counter),
		dropped:   newDesc("player", "dropped_bytes_total", "Unread bytes discarded to make room.", counter),
		underruns: newDesc("player", "underruns_total", "Times the queue ran dry during playback.", counter),
		callbacks: newDesc("player", "callbacks_total", "Device fill callbacks served.", counter),

		allocated:   newDesc("pool", "allocated_total", "Buffers allocated.", counter),
		reused:      newDesc("pool", "reused_total", "Buffers served from a free list.", counter),
		returned:    newDesc("pool", "returned_total", "Buffers returned to a free list.", counter),
		outstanding: newDesc("pool", "outstanding", "Buffers handed out and not yet freed.", gauge),

		frames:       newDesc("encoder", "frames_total", "Frames submitted to the codec.", counter),
		packets:      newDesc("encoder", "packets_total", "Packets produced by the codec.", counter),
		bytesIn:      newDesc("encoder", "input_bytes_total", "PCM bytes accepted by Encode.", counter),
		bytesOut:     newDesc("encoder", "output_bytes_total", "Packet bytes produced.", counter),
		encodeErrors: newDesc("encoder", "errors_total", "Encode and flush failures.", counter),
	}
}

func (c *Collector) all() []desc {
	return []desc{
		c.queued, c.capacity, c.written, c.played, c.silence, c.rejected, c.dropped, c.underruns, c.callbacks,
		c.allocated, c.reused, c.returned, c.outstanding,
		c.frames, c.packets, c.bytesIn, c.bytesOut, c.encodeErrors,
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.all() {
		ch <- d.d
	}
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	emit := func(d desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d.d, d.vt, v)
	}

	if c.Player != nil {
		s := c.Player.Stats()
		emit(c.queued, float64(s.Queued))
		emit(c.capacity, float64(s.Capacity))
		emit(c.written, float64(s.Written))
		emit(c.played, float64(s.Played))
		emit(c.silence, float64(s.Silence))
		emit(c.rejected, float64(s.Rejected))
		emit(c.dropped, float64(s.Dropped))
		emit(c.underruns, float64(s.Underruns))
		emit(c.callbacks, float64(s.Callbacks))
	}
	if c.Pool != nil {
		s := c.Pool.Stats()
		emit(c.allocated, float64(s.Allocated))
		emit(c.reused, float64(s.Reused))
		emit(c.returned, float64(s.Returned))
		emit(c.outstanding, float64(s.Outstanding))
	}
	if c.Encoder != nil {
		s := c.Encoder.Stats()
		emit(c.frames, float64(s.Frames))
		emit(c.packets, float64(s.Packets))
		emit(c.bytesIn, float64(s.BytesIn))
		emit(c.bytesOut, float64(s.BytesOut))
		emit(c.encodeErrors, float64(s.Errors))
	}
}

// Server serves /metrics for one registry
type Server struct {
	srv *http.Server
	log slog.Logger
}

// NewServer registers c on a fresh registry and prepares an HTTP server on
// addr.
func NewServer(addr string, c *Collector, log slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Disabled
	}
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(reg,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return &Server{
		srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		log: log,
	}, nil
}

// Run serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Infof("Serving metrics on http://%s/metrics", s.srv.Addr)
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler exposes the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
