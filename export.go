package tracker

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/padsynth/tracker-go/internal/song"
)

// mp3Encoder is the external encoder the MP3 export shells out to.
const mp3Encoder = "lame"

// EncodeWAV16LE packs interleaved samples into a 16-bit PCM WAV container.
func EncodeWAV16LE(samples []float32, sampleRate, channels int) []byte {
	dataSize := len(samples) * 2
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		v := int16(math.Round(float64(s) * 32767))
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(v))
	}
	return out
}

// EncodeWAVFloat32LE packs interleaved samples into a float32 WAV container.
func EncodeWAVFloat32LE(samples []float32, sampleRate, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// ExportWAV renders durationBeats of the arrangement from the top and
// writes a 16-bit PCM WAV; durationBeats <= 0 renders the whole song plus
// the release tail. The file appears atomically: on failure nothing is
// left at path.
func ExportWAV(path string, project *song.Project, sampleRate int, durationBeats float64) error {
	samples := renderForExport(project, sampleRate, durationBeats)
	if len(samples) == 0 {
		return fmt.Errorf("export wav: nothing to render")
	}
	return writeFileAtomic(path, EncodeWAV16LE(samples, sampleRate, 2))
}

func renderForExport(project *song.Project, sampleRate int, durationBeats float64) []float32 {
	if durationBeats > 0 {
		return RenderSamples(project, sampleRate, 0, durationBeats)
	}
	return RenderSong(project, sampleRate)
}

// EncoderAvailable reports whether the external MP3 encoder is on PATH.
func EncoderAvailable() bool {
	_, err := exec.LookPath(mp3Encoder)
	return err == nil
}

// EncoderStatus returns a human-readable description of MP3 export support.
func EncoderStatus() string {
	p, err := exec.LookPath(mp3Encoder)
	if err != nil {
		return fmt.Sprintf("mp3 export unavailable: %q not found in PATH", mp3Encoder)
	}
	return fmt.Sprintf("mp3 export via %s", p)
}

// ExportMP3 renders durationBeats of the arrangement (<= 0 = whole song
// plus tail) and encodes it through the external encoder at the given
// bitrate. Fails without touching path when the encoder is missing; a
// failed encode leaves no partial file behind.
func ExportMP3(path string, project *song.Project, sampleRate, bitrateKbps int, durationBeats float64) error {
	lame, err := exec.LookPath(mp3Encoder)
	if err != nil {
		return fmt.Errorf("export mp3: %s", EncoderStatus())
	}
	if bitrateKbps <= 0 {
		bitrateKbps = 192
	}
	samples := renderForExport(project, sampleRate, durationBeats)
	if len(samples) == 0 {
		return fmt.Errorf("export mp3: nothing to render")
	}

	tmpWav, err := os.CreateTemp(filepath.Dir(path), ".export-*.wav")
	if err != nil {
		return fmt.Errorf("export mp3: %w", err)
	}
	tmpWavPath := tmpWav.Name()
	defer os.Remove(tmpWavPath)
	if _, err := tmpWav.Write(EncodeWAV16LE(samples, sampleRate, 2)); err != nil {
		tmpWav.Close()
		return fmt.Errorf("export mp3: %w", err)
	}
	if err := tmpWav.Close(); err != nil {
		return fmt.Errorf("export mp3: %w", err)
	}

	tmpMp3 := tmpWavPath + ".mp3"
	cmd := exec.Command(lame, "--quiet", "-b", strconv.Itoa(bitrateKbps), tmpWavPath, tmpMp3)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(tmpMp3)
		return fmt.Errorf("export mp3: %s failed: %v (%s)", mp3Encoder, err, out)
	}
	if err := os.Rename(tmpMp3, path); err != nil {
		os.Remove(tmpMp3)
		return fmt.Errorf("export mp3: %w", err)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename so a failure cannot
// leave a truncated file at path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
