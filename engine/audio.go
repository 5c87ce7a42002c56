package engine

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/Zyko0/go-sdl3/sdl"
)

const (
	MaxActiveSounds   = 16
	AudioScratchBytes = 4096
)

var mixSpec = sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: 2, Freq: 44100}

type SoundResource struct {
	Data []byte
	Spec sdl.AudioSpec
}

type ActiveSound struct {
	Resource *SoundResource
	PlayPos  uint32
	Active   bool
}

// AudioMixer sums up to MaxActiveSounds S16 streams into the device buffer.
type AudioMixer struct {
	Slots   [MaxActiveSounds]ActiveSound
	Mutex   sync.Mutex
	Scratch []byte
}

func NewAudioMixer() *AudioMixer {
	return &AudioMixer{
		Scratch: make([]byte, AudioScratchBytes),
	}
}

// Mix adds the active sounds into dst and advances their positions.
// dst must hold whole S16 samples.
func (m *AudioMixer) Mix(dst []byte) {
	clear(dst)
	if len(dst) < 2 {
		return
	}
	out := unsafe.Slice((*int16)(unsafe.Pointer(&dst[0])), len(dst)/2)

	m.Mutex.Lock()
	defer m.Mutex.Unlock()
	for i := 0; i < MaxActiveSounds; i++ {
		s := &m.Slots[i]
		if !s.Active {
			continue
		}

		soundRemaining := uint32(len(s.Resource.Data)) - s.PlayPos
		toMix := uint32(len(dst))
		if toMix > soundRemaining {
			toMix = soundRemaining
		}

		if toMix >= 2 {
			src := unsafe.Slice((*int16)(unsafe.Pointer(&s.Resource.Data[s.PlayPos])), toMix/2)
			for j := range src {
				val := int32(out[j]) + int32(src[j])
				if val > 32767 {
					val = 32767
				} else if val < -32768 {
					val = -32768
				}
				out[j] = int16(val)
			}
		}

		s.PlayPos += toMix
		if s.PlayPos >= uint32(len(s.Resource.Data)) {
			s.Active = false
		}
	}
}

// Callback feeds the SDL audio stream.
func (m *AudioMixer) Callback(stream *sdl.AudioStream, additionalAmount, totalAmount int32) {
	remaining := int(additionalAmount)
	for remaining > 0 {
		chunk := remaining
		if chunk > AudioScratchBytes {
			chunk = AudioScratchBytes
		}
		m.Mix(m.Scratch[:chunk])
		stream.PutData(m.Scratch[:chunk])
		remaining -= chunk
	}
}

// Play starts res in a free slot. It reports false when all slots are busy.
func (m *AudioMixer) Play(res *SoundResource) bool {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	for i := 0; i < MaxActiveSounds; i++ {
		if !m.Slots[i].Active {
			m.Slots[i].Resource = res
			m.Slots[i].PlayPos = 0
			m.Slots[i].Active = true
			return true
		}
	}
	return false
}

// SoundBank plays named WAV files through one mixer stream. It implements
// scene.Sounder.
type SoundBank struct {
	mixer  *AudioMixer
	stream *sdl.AudioStream
	sounds map[string]*SoundResource
}

// OpenSoundBank opens the default playback device. SDL must be initialised
// with INIT_AUDIO.
func OpenSoundBank() (*SoundBank, error) {
	mixer := NewAudioMixer()
	spec := mixSpec
	cb := sdl.NewAudioStreamCallback(mixer.Callback)
	stream := sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(&spec, cb)
	if stream == nil {
		return nil, fmt.Errorf("failed to open audio stream")
	}
	stream.ResumeDevice()
	return &SoundBank{
		mixer:  mixer,
		stream: stream,
		sounds: make(map[string]*SoundResource),
	}, nil
}

// Load reads a WAV file and converts it to the mixer format.
func (b *SoundBank) Load(name, path string) error {
	spec := &sdl.AudioSpec{}
	raw, err := sdl.LoadWAV(path, spec)
	if err != nil {
		return fmt.Errorf("load sound %s: %w", path, err)
	}

	res := &SoundResource{Spec: *spec, Data: raw}
	if spec.Format != mixSpec.Format || spec.Channels != mixSpec.Channels || spec.Freq != mixSpec.Freq {
		target := mixSpec
		converted, err := sdl.ConvertAudioSamples(spec, raw, &target)
		if err != nil {
			return fmt.Errorf("convert sound %s: %w", path, err)
		}
		res = &SoundResource{Spec: mixSpec, Data: converted}
	}
	b.sounds[name] = res
	return nil
}

func (b *SoundBank) Play(name string) error {
	res, ok := b.sounds[name]
	if !ok {
		return fmt.Errorf("sound %q not loaded", name)
	}
	if !b.mixer.Play(res) {
		return fmt.Errorf("no free mixer slot for %q", name)
	}
	return nil
}

func (b *SoundBank) Close() {
	if b.stream != nil {
		b.stream.Destroy()
	}
}
