// ABOUTME: Software volume control
// ABOUTME: Scales int16 PCM in place on the device callback path
package player

import "encoding/binary"

// SetVolume sets the volume (0-100)
func (p *Player) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
	p.log.Debugf("Volume set to %d", volume)
}

// Volume returns the current volume
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetMuted sets mute state
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
	p.log.Debugf("Muted: %v", muted)
}

// IsMuted returns mute state
func (p *Player) IsMuted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// applyVolume scales little-endian int16 samples in place
func applyVolume(pcm []byte, multiplier float64) {
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16(float64(sample)*multiplier)))
	}
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
