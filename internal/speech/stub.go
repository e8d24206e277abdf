package speech

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"slices"

	"omniflow/internal/catalog"
)

const (
	wavSampleRate = 44100
	wavHeaderSize = 44
)

// pcmHeader is the canonical 44-byte RIFF header for mono 16-bit PCM.
type pcmHeader struct {
	Riff        [4]byte
	RiffSize    uint32
	Wave        [4]byte
	Fmt         [4]byte
	FmtSize     uint32
	Format      uint16
	Channels    uint16
	SampleRate  uint32
	ByteRate    uint32
	BlockAlign  uint16
	SampleWidth uint16
	Data        [4]byte
	DataSize    uint32
}

func newPCMHeader(dataSize uint32) pcmHeader {
	const frame = 2
	return pcmHeader{
		Riff:        [4]byte{'R', 'I', 'F', 'F'},
		RiffSize:    wavHeaderSize - 8 + dataSize,
		Wave:        [4]byte{'W', 'A', 'V', 'E'},
		Fmt:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:     16,
		Format:      1,
		Channels:    1,
		SampleRate:  wavSampleRate,
		ByteRate:    wavSampleRate * frame,
		BlockAlign:  frame,
		SampleWidth: 8 * frame,
		Data:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:    dataSize,
	}
}

// StubProvider returns silence sized to the text. Used when no voice
// API key is configured.
type StubProvider struct {
	wpm float64
}

func NewStubProvider(wordsPerMinute float64) *StubProvider {
	return &StubProvider{wpm: cmp.Or(max(wordsPerMinute, 0), DefaultWordsPerMinute)}
}

func (s *StubProvider) Synthesize(_ context.Context, text string, _ Settings) ([]byte, error) {
	return silence(EstimateSeconds(text, s.wpm))
}

// Voices lists the catalog presets.
func (s *StubProvider) Voices(_ context.Context) ([]Voice, error) {
	var voices []Voice
	for name, preset := range catalog.Voices() {
		voices = append(voices, Voice{
			ID:          preset.ID,
			Name:        name,
			Category:    "preset",
			Description: preset.Description,
		})
	}
	slices.SortFunc(voices, func(a, b Voice) int { return cmp.Compare(a.Name, b.Name) })
	return voices, nil
}

func silence(seconds float64) ([]byte, error) {
	samples := uint32(seconds * wavSampleRate)
	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + int(samples)*2)
	if err := binary.Write(&buf, binary.LittleEndian, newPCMHeader(samples*2)); err != nil {
		return nil, err
	}
	buf.Write(make([]byte, samples*2))
	return buf.Bytes(), nil
}
