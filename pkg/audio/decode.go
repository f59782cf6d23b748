package audio

import (
	"bytes"
	"io"

	wav "github.com/youpy/go-wav"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// DecodeWAV parses a RIFF/WAV payload into a mono Signal. Multi-channel input
// is collapsed by averaging. Corrupt or truncated payloads return a decode
// error; the caller rejects the request rather than retrying.
func DecodeWAV(data []byte) (*Signal, error) {
	if len(data) == 0 {
		return nil, voice.NewDecodeError("empty payload")
	}

	reader := wav.NewReader(bytes.NewReader(data))
	format, err := reader.Format()
	if err != nil {
		return nil, voice.NewDecodeError("invalid wav header: " + err.Error())
	}
	if format.SampleRate == 0 || format.NumChannels == 0 {
		return nil, voice.NewDecodeError("wav header declares zero sample rate or channels")
	}

	channels := int(format.NumChannels)
	var samples []float64
	for {
		frames, err := reader.ReadSamples(4096)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, voice.NewDecodeError("corrupt wav data: " + err.Error())
		}
		for _, frame := range frames {
			var sum float64
			for ch := 0; ch < channels; ch++ {
				sum += reader.FloatValue(frame, uint(ch))
			}
			samples = append(samples, sum/float64(channels))
		}
	}

	if len(samples) == 0 {
		return nil, voice.NewDecodeError("wav contains no audio frames")
	}

	return &Signal{Samples: samples, SampleRate: int(format.SampleRate)}, nil
}

// DecodeRaw interprets a payload as headerless 16-bit little-endian PCM at the
// declared rate. Streaming chunks arrive in this form.
func DecodeRaw(data []byte, sampleRate int) (*Signal, error) {
	if len(data) < 2 {
		return nil, voice.NewDecodeError("raw pcm payload too short")
	}
	if sampleRate <= 0 {
		return nil, voice.NewDecodeError("raw pcm requires a declared sample rate")
	}
	return FromPCM16(data, sampleRate), nil
}

// Decode sniffs the payload: RIFF-tagged data goes through the WAV parser,
// anything else is treated as raw PCM at declaredRate.
func Decode(data []byte, declaredRate int) (*Signal, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], []byte("RIFF")) {
		return DecodeWAV(data)
	}
	return DecodeRaw(data, declaredRate)
}
