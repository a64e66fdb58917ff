// Command sfrender loads a SoundFont, triggers a single note against one of
// its presets, and writes the rendered audio to a WAV file. It exercises the
// sf2/engine packages end to end the way a host's sfload/sfpreset/sfplay
// opcode sequence would (spec.md §6), standing in for the real audio host
// this module is meant to be embedded inside.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	flag "github.com/spf13/pflag"

	"github.com/csaudio/sf2engine/engine"
)

const maxVoices = 64

func main() {
	var (
		fontPath = flag.String("font", "", "path to a .sf2 file (required)")
		outPath  = flag.String("out", "out.wav", "output WAV path")
		program  = flag.Int("program", 0, "MIDI program number")
		bank     = flag.Int("bank", 0, "MIDI bank number")
		instrIdx = flag.Int("instrument", -1, "play instrument N directly instead of a preset (bypasses program/bank)")
		note     = flag.Int("note", 60, "MIDI key number")
		vel      = flag.Int("vel", 100, "MIDI velocity")
		seconds  = flag.Float64("seconds", 1.0, "render length, seconds")
		rate     = flag.Int("rate", 44100, "output sample rate, Hz")
		cubic    = flag.Bool("cubic", false, "use cubic instead of linear interpolation")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "sfrender"})

	if *fontPath == "" {
		logger.Fatal("missing required flag", "flag", "--font")
	}

	if err := run(logger, *fontPath, *outPath, *program, *bank, *instrIdx, *note, *vel, *seconds, *rate, *cubic); err != nil {
		logger.Fatal("render failed", "err", err)
	}
}

func run(logger *log.Logger, fontPath, outPath string, program, bank, instrIdx, note, vel int, seconds float64, rate int, cubic bool) error {
	reg := engine.NewRegistry()
	defer reg.Close()

	fontID, err := reg.LoadFont(fontPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", fontPath, err)
	}

	trig := engine.Trigger{
		Note:       note,
		Vel:        vel,
		OutputRate: float64(rate),
	}

	var voices [maxVoices]engine.Voice
	var n int

	if instrIdx >= 0 {
		font, instr, err := reg.Instrument(fontID, instrIdx)
		if err != nil {
			return err
		}
		n, err = engine.SetupInstrument(voices[:], font, instr, trig)
		if err != nil {
			return err
		}
		logger.Info("playing instrument directly", "instrument", instr.Name, "voices", n)
	} else {
		const presetHandle = 0
		if err := reg.Assign(presetHandle, fontID, program, bank); err != nil {
			return err
		}
		font, preset, err := reg.Preset(presetHandle)
		if err != nil {
			return err
		}
		n, err = engine.SetupPreset(voices[:], font, preset, trig)
		if err != nil {
			return err
		}
		logger.Info("playing preset", "preset", preset.Name, "program", preset.Program, "bank", preset.Bank, "voices", n)
	}

	if n == 0 {
		logger.Warn("no zone matched the requested note/velocity; output will be silent", "note", note, "vel", vel)
	}

	frames := int(seconds * float64(rate))
	left := make([]float64, frames)
	right := make([]float64, frames)

	freq := engine.Control{Scalar: 1.0}
	amp := engine.Control{Scalar: 1.0}

	const blockSize = 512
	renderFn := engine.RenderStereoLinear
	if cubic {
		renderFn = engine.RenderStereoCubic
	}
	for start := 0; start < frames; start += blockSize {
		end := start + blockSize
		if end > frames {
			end = frames
		}
		renderFn(voices[:n], left[start:end], right[start:end], freq, amp)
	}

	return writeWav(outPath, rate, left, right)
}

func writeWav(path string, rate int, left, right []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 2, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:   make([]int, 2*len(left)),
	}
	for i := range left {
		buf.Data[2*i] = clampInt16(left[i])
		buf.Data[2*i+1] = clampInt16(right[i])
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	return enc.Close()
}

func clampInt16(x float64) int {
	v := x * 32767.0
	if v > 32767.0 {
		return 32767
	}
	if v < -32768.0 {
		return -32768
	}
	return int(v)
}
