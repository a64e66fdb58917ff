package engine

// Render kernel (spec.md §4.G). Per spec.md §9 "Block-local inner loops",
// the four {linear, cubic} × {mono, stereo} combinations are factored as
// separate monomorphized functions rather than one function that branches
// on interpolator/channel-count inside the per-sample step — that branch,
// if present, belongs at the call site (which interpolator/channel-count
// function to call), never inside the loop body.
//
// The render kernel never allocates, blocks, or returns an error: spec.md
// §5 requires it not to, and §7 requires all render-time validation to
// have already happened during voice setup.

// Control is a per-frame or scalar input to the render kernel (the amp and
// freq opcode inputs, spec.md §4.G "Pitch modulation" / §6). Buf, when
// non-nil, is read one sample per frame; otherwise Scalar is used for the
// whole block.
type Control struct {
	Scalar float64
	Buf    []float64
}

func (c Control) at(i int) float64 {
	if c.Buf != nil {
		return c.Buf[i]
	}
	return c.Scalar
}

// pcmAt reads pcm[idx], clamping to the pool's bounds. The pool carries
// guardFrames zero frames past its last sample and load only warns about
// out-of-bounds splits, so the high clamp never triggers for well-formed
// fonts and is what keeps a malformed split's reads in range; the low clamp
// guards the one case spec.md's cubic formula can underrun — a voice at
// phase ≈ 0 reads index phase-1, which can be Base-1 when a sample starts
// at PCM offset 0.
func pcmAt(pcm []int16, idx int) float64 {
	if idx < 0 {
		idx = 0
	} else if idx >= len(pcm) {
		idx = len(pcm) - 1
	}
	return float64(pcm[idx])
}

// loopWrap applies the loop-entered latch and wraparound discipline of
// spec.md §4.G "Loop discipline". looplen <= 0 (a zero-length or inverted
// loop) is the documented edge case that yields silence: the caller skips
// generating any output for the voice in that case rather than looping
// forever.
func loopWrap(v *Voice) {
	if v.Phase >= v.StartLoop {
		v.loopEntered = true
	}
	if !v.loopEntered {
		return
	}
	looplen := v.EndLoop - v.StartLoop
	for v.Phase >= v.EndLoop {
		v.Phase -= looplen
	}
	for v.Phase < v.StartLoop {
		v.Phase += looplen
	}
}

func clampNonNegative(phase float64) float64 {
	if phase < 0 {
		return 0
	}
	return phase
}

// RenderStereoLinear renders ksmps=len(left) frames of every voice with
// linear interpolation into left/right, summing in voice-slot order
// (spec.md §5 "Ordering guarantee").
func RenderStereoLinear(voices []Voice, left, right []float64, freq, amp Control) {
	for i := range left {
		left[i] = 0
		right[i] = 0
	}

	for vi := range voices {
		v := &voices[vi]
		looping := v.Mode == 1 || v.Mode == 3
		looplen := v.EndLoop - v.StartLoop
		if looping && looplen <= 0 {
			continue
		}

		n := len(left)
		for i := 0; i < n; i++ {
			if !looping {
				if v.Phase >= v.End {
					break
				}
				v.Phase = clampNonNegative(v.Phase)
			}

			idx := int(v.Phase)
			frac := v.Phase - float64(idx)
			s0 := pcmAt(v.PCM, v.Base+idx)
			s1 := pcmAt(v.PCM, v.Base+idx+1)
			out := s0 + (s1-s0)*frac

			left[i] += v.LeftLevel * out
			right[i] += v.RightLevel * out

			v.Phase += v.Si * freq.at(i)
			if looping {
				loopWrap(v)
			}
		}
	}

	for i := range left {
		a := amp.at(i)
		left[i] *= a
		right[i] *= a
	}
}

// RenderStereoCubic is RenderStereoLinear with 4-point cubic interpolation
// (spec.md §4.G "Cubic"), ported bit-for-bit from the original's macro
// (see DESIGN.md).
func RenderStereoCubic(voices []Voice, left, right []float64, freq, amp Control) {
	for i := range left {
		left[i] = 0
		right[i] = 0
	}

	for vi := range voices {
		v := &voices[vi]
		looping := v.Mode == 1 || v.Mode == 3
		looplen := v.EndLoop - v.StartLoop
		if looping && looplen <= 0 {
			continue
		}

		n := len(left)
		for i := 0; i < n; i++ {
			if !looping {
				if v.Phase >= v.End {
					break
				}
				v.Phase = clampNonNegative(v.Phase)
			}

			out := cubicSample(v.PCM, v.Base, v.Phase)

			left[i] += v.LeftLevel * out
			right[i] += v.RightLevel * out

			v.Phase += v.Si * freq.at(i)
			if looping {
				loopWrap(v)
			}
		}
	}

	for i := range left {
		a := amp.at(i)
		left[i] *= a
		right[i] *= a
	}
}

// RenderMonoLinear is the mono counterpart of RenderStereoLinear.
func RenderMonoLinear(voices []Voice, out []float64, freq, amp Control) {
	for i := range out {
		out[i] = 0
	}

	for vi := range voices {
		v := &voices[vi]
		looping := v.Mode == 1 || v.Mode == 3
		looplen := v.EndLoop - v.StartLoop
		if looping && looplen <= 0 {
			continue
		}

		n := len(out)
		for i := 0; i < n; i++ {
			if !looping {
				if v.Phase >= v.End {
					break
				}
				v.Phase = clampNonNegative(v.Phase)
			}

			idx := int(v.Phase)
			frac := v.Phase - float64(idx)
			s0 := pcmAt(v.PCM, v.Base+idx)
			s1 := pcmAt(v.PCM, v.Base+idx+1)
			sample := s0 + (s1-s0)*frac

			out[i] += v.Atten * sample

			v.Phase += v.Si * freq.at(i)
			if looping {
				loopWrap(v)
			}
		}
	}

	for i := range out {
		out[i] *= amp.at(i)
	}
}

// RenderMonoCubic is the mono counterpart of RenderStereoCubic.
func RenderMonoCubic(voices []Voice, out []float64, freq, amp Control) {
	for i := range out {
		out[i] = 0
	}

	for vi := range voices {
		v := &voices[vi]
		looping := v.Mode == 1 || v.Mode == 3
		looplen := v.EndLoop - v.StartLoop
		if looping && looplen <= 0 {
			continue
		}

		n := len(out)
		for i := 0; i < n; i++ {
			if !looping {
				if v.Phase >= v.End {
					break
				}
				v.Phase = clampNonNegative(v.Phase)
			}

			sample := cubicSample(v.PCM, v.Base, v.Phase)
			out[i] += v.Atten * sample

			v.Phase += v.Si * freq.at(i)
			if looping {
				loopWrap(v)
			}
		}
	}

	for i := range out {
		out[i] *= amp.at(i)
	}
}

// cubicSample is the 4-point Lagrange interpolator of spec.md §4.G, ported
// from sfont.c's Cubic_interpolation macro with the index origin at
// phase-1.
func cubicSample(pcm []int16, base int, phase float64) float64 {
	phs1 := phase - 1
	x0 := int(phs1)
	frac := phs1 - float64(x0)

	ym1 := pcmAt(pcm, base+x0)
	y0 := pcmAt(pcm, base+x0+1)
	y1 := pcmAt(pcm, base+x0+2)
	y2 := pcmAt(pcm, base+x0+3)

	frsq := frac * frac
	frcu := frsq * ym1
	t1 := y2 + 3.0*y0

	return y0 + 0.5*frcu +
		frac*(y1-frcu/6.0-t1/6.0-ym1/3.0) +
		frsq*frac*(t1/6.0-0.5*y1) +
		frsq*(0.5*y1-y0)
}
