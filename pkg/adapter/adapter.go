// Package adapter defines the narrow interfaces sentineld polls for radio,
// audio, and location samples. spec.md §1 treats the telephony adapter, the
// audio capture adapter, and the location provider as external
// collaborators specified only by the interface the core consumes; this
// package is that interface, plus simulated stand-ins that let the daemon
// run end to end before a real platform adapter is wired in.
package adapter

import (
	"github.com/meshguard/sentinel/pkg/cellular"
	"github.com/meshguard/sentinel/pkg/model"
)

// TelephonySource yields the current registered radio cell list, mirroring
// the Kotlin engine's on_cell_info callback (spec.md §6).
type TelephonySource interface {
	PollCellInfo() ([]cellular.RadioCell, error)

	// PollDisplayOverride reports the platform's current display-generation
	// hint (NONE/LTE_CA/LTE_ADVANCED_PRO/NR_NSA/NR_NSA_MMWAVE/NR_ADVANCED),
	// mirroring on_display_override (spec.md §6). ok is false when the
	// platform has no override to report, e.g. on a source that never
	// polled the radio stack for one.
	PollDisplayOverride() (override cellular.DisplayOverride, ok bool)
}

// AudioSource yields one PCM mono i16 @ 44,100 Hz buffer per read, sized to
// the caller's request (spec.md §6's "buffer size >= 4x FFT_SIZE").
type AudioSource interface {
	ReadPCM(samples int) ([]int16, error)
}

// LocationSource reports the last known location and whether it is still
// within spec.md §6's 30,000 ms staleness threshold.
type LocationSource interface {
	CurrentLocation() (loc *model.LatLon, fresh bool)
}

// StaticTelephonySource is a placeholder TelephonySource: it reports one
// steady, registered cell and never changes. It exercises the engine's
// scan-cycle plumbing in the absence of a wired platform radio adapter.
type StaticTelephonySource struct {
	Cell cellular.RadioCell

	// DisplayOverride, if non-empty, is reported back on every poll; this
	// lets tests and the simulated adapter exercise the 5G-NSA-over-LTE
	// display rule (spec.md §6) without a real platform radio stack.
	DisplayOverride cellular.DisplayOverride
}

// NewStaticTelephonySource returns a source reporting a single registered
// LTE cell with the given identity and signal strength.
func NewStaticTelephonySource(ci int64, mcc, mnc string, signalDBM int) *StaticTelephonySource {
	return &StaticTelephonySource{
		Cell: cellular.RadioCell{
			Registered: true,
			Tech:       cellular.TechLTE,
			CI:         &ci,
			MCC:        &mcc,
			MNC:        &mnc,
			SignalDBM:  signalDBM,
		},
	}
}

func (s *StaticTelephonySource) PollCellInfo() ([]cellular.RadioCell, error) {
	return []cellular.RadioCell{s.Cell}, nil
}

func (s *StaticTelephonySource) PollDisplayOverride() (cellular.DisplayOverride, bool) {
	if s.DisplayOverride == "" {
		return cellular.DisplayNone, false
	}
	return s.DisplayOverride, true
}

// SilentAudioSource is a placeholder AudioSource that yields zero-signal
// PCM buffers. It drives the ultrasonic scan cycle without claiming to
// detect anything until a real capture device is attached.
type SilentAudioSource struct{}

// NewSilentAudioSource returns a source that always reads silence.
func NewSilentAudioSource() *SilentAudioSource { return &SilentAudioSource{} }

func (s *SilentAudioSource) ReadPCM(samples int) ([]int16, error) {
	return make([]int16, samples), nil
}

// FixedLocationSource reports a single configured coordinate as always
// fresh, standing in for a platform location provider.
type FixedLocationSource struct {
	loc model.LatLon
}

// NewFixedLocationSource returns a source pinned to (lat, lon).
func NewFixedLocationSource(lat, lon float64) *FixedLocationSource {
	return &FixedLocationSource{loc: model.LatLon{Lat: lat, Lon: lon}}
}

func (s *FixedLocationSource) CurrentLocation() (*model.LatLon, bool) {
	loc := s.loc
	return &loc, true
}
