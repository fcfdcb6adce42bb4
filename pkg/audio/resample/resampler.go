// ABOUTME: Streaming linear resampler for interleaved int16 audio
// ABOUTME: Carries the last input frame across calls so chunk edges are seamless
package resample

// Resampler performs linear interpolation to convert between sample rates.
// It is not safe for concurrent use.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	step       float64 // input frames advanced per output frame
	position   float64 // read position, relative to prev when hasPrev
	prev       []int16 // last input frame of the previous call
	hasPrev    bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		step:       float64(inputRate) / float64(outputRate),
		prev:       make([]int16, channels),
	}
}

// InputRate returns the rate Process expects
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the rate Process produces
func (r *Resampler) OutputRate() int { return r.outputRate }

// Process appends the resampled form of input to dst. input holds whole
// interleaved frames at the input rate.
func (r *Resampler) Process(dst, input []int16) []int16 {
	ch := r.channels
	inFrames := len(input) / ch
	if inFrames == 0 {
		return dst
	}
	if r.inputRate == r.outputRate {
		return append(dst, input[:inFrames*ch]...)
	}

	offset := 0
	if r.hasPrev {
		offset = 1
	}
	total := inFrames + offset

	frame := func(i int) []int16 {
		if i < offset {
			return r.prev
		}
		i -= offset
		return input[i*ch : (i+1)*ch]
	}

	for {
		idx := int(r.position)
		if idx+1 >= total {
			break
		}
		frac := r.position - float64(idx)
		a, b := frame(idx), frame(idx+1)
		for c := 0; c < ch; c++ {
			v := float64(a[c])*(1-frac) + float64(b[c])*frac
			dst = append(dst, int16(v))
		}
		r.position += r.step
	}

	// The last frame becomes prev, at index 0 of the next call
	r.position -= float64(total - 1)
	copy(r.prev, input[(inFrames-1)*ch:inFrames*ch])
	r.hasPrev = true
	return dst
}

// Reset forgets the carried frame and read position
func (r *Resampler) Reset() {
	r.position = 0
	r.hasPrev = false
	for i := range r.prev {
		r.prev[i] = 0
	}
}

// OutputFramesFor estimates output frames produced for inputFrames
func (r *Resampler) OutputFramesFor(inputFrames int) int {
	return int(float64(inputFrames) / r.step)
}
