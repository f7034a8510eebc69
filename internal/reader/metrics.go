package reader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesProducedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_frames_produced_total",
		Help: "Frames written into the ring buffer by the producer",
	}, []string{"session_id"})

	framesConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_frames_consumed_total",
		Help: "Frames handed to NextFrame callers",
	}, []string{"session_id"})

	duplicateFramesetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_duplicate_framesets_total",
		Help: "Framesets discarded because their sequence number did not advance",
	}, []string{"session_id"})

	bufferOccupancy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "replay_buffer_occupancy",
		Help: "Filled-but-unconsumed ring buffer slots",
	}, []string{"session_id"})

	streamEOFTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_stream_eof_total",
		Help: "End-of-stream events detected by the producer",
	}, []string{"session_id"})

	producerFaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_producer_faults_total",
		Help: "Fatal source errors hit by the producer goroutine",
	}, []string{"session_id"})

	seeksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_seeks_total",
		Help: "Successful restart-based seeks",
	}, []string{"session_id"})
)
