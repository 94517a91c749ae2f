//go:build linux

// Package mpris exposes the media element over D-Bus as an MPRIS player.
package mpris

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/mediahost/internal/media"
)

// Adapter connects a media element to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter for the element.
func New(element *media.Element) (*Adapter, error) {
	a := &Adapter{}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{element: element}

	a.server = server.NewServer("mediahost", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Mediahost", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"mem"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"video/mp4", "audio/mp4", "video/webm", "audio/webm"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	element *media.Element
}

func (p *playerAdapter) Next() error {
	return nil // Single source, no queue
}

func (p *playerAdapter) Previous() error {
	return nil // Single source, no queue
}

func (p *playerAdapter) Pause() error {
	p.element.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	if p.element.Paused() {
		p.element.Play()
	} else {
		p.element.Pause()
	}
	return nil
}

func (p *playerAdapter) Stop() error {
	p.element.Pause()
	p.element.SetCurrentTime(0)
	return nil
}

func (p *playerAdapter) Play() error {
	p.element.Play()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	delta := (time.Duration(offset) * time.Microsecond).Seconds()
	p.element.SetCurrentTime(p.element.CurrentTime() + delta)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.element.SetCurrentTime((time.Duration(position) * time.Microsecond).Seconds())
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	return p.element.SetSource(uri)
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	if p.element.Source() == "" {
		return types.PlaybackStatusStopped, nil
	}
	if p.element.Paused() {
		return types.PlaybackStatusPaused, nil
	}
	return types.PlaybackStatusPlaying, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.element.PlaybackRate(), nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	p.element.SetPlaybackRate(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	url := p.element.Source()
	if url == "" {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(url)),
		Title:   url,
	}
	if dur := p.element.Duration(); !math.IsNaN(dur) {
		meta.Length = types.Microseconds(dur * float64(time.Second/time.Microsecond))
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	if p.element.Muted() {
		return 0, nil
	}
	return p.element.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.element.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return int64(p.element.CurrentTime() * float64(time.Second/time.Microsecond)), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 0.25, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 4.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.element.Source() != "", nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.element.Loop() {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	p.element.SetLoop(status == types.LoopStatusTrack)
	return nil
}

func formatTrackID(url string) string {
	h := fnv.New64a()
	h.Write([]byte(url))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
