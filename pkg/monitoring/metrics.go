package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesComposited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slidecast",
		Name:      "frames_composited_total",
		Help:      "Number of frames painted onto the recording canvas.",
	})
	ChunksEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slidecast",
		Name:      "segments_emitted_total",
		Help:      "Number of media segments cut from the encoder stream.",
	})
	ChunkBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slidecast",
		Name:      "segment_bytes_total",
		Help:      "Total size of all emitted media segments.",
	})
	MirrorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slidecast",
		Name:      "segment_mirror_failures_total",
		Help:      "Number of segments that failed to reach durable storage.",
	})
	SessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slidecast",
		Name:      "sessions_ended_total",
		Help:      "Number of recording sessions by final state.",
	}, []string{"status"})
)
