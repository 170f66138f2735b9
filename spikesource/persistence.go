package spikesource

import (
	"fmt"
	"os"
)

// SaveBank serializes the parameter block and the full source array,
// contiguous and ordered by local id. The encoding round-trips
// byte-identically through LoadBank.
func SaveBank(b *Bank) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]byte, 0, ParamsSize+len(b.sources)*SourceSize)
	out = append(out, b.params.Encode()...)
	for _, src := range b.sources {
		out = append(out, src.Encode()...)
	}

	return out
}

// LoadBank deserializes a bank previously produced by SaveBank.
func LoadBank(data []byte) (*Bank, error) {
	params, sources, err := decodeBank(data)
	if err != nil {
		return nil, err
	}

	return NewBank(params, sources)
}

// Reload replaces the bank content in place, keeping the identity of the
// bank that the scheduler and rate-update handler share.
func (b *Bank) Reload(data []byte) error {
	params, sources, err := decodeBank(data)
	if err != nil {
		return err
	}

	if err := params.Seed.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	b.params = params
	b.sources = sources
	b.mu.Unlock()

	return nil
}

func decodeBank(data []byte) (Params, []Source, error) {
	params, err := DecodeParams(data)
	if err != nil {
		return Params{}, nil, err
	}

	want := ParamsSize + int(params.NSources)*SourceSize
	if len(data) != want {
		return Params{}, nil, fmt.Errorf(
			"spikesource: bank blob is %d bytes, want %d for %d sources",
			len(data), want, params.NSources)
	}

	sources := make([]Source, params.NSources)
	for i := range sources {
		offset := ParamsSize + i*SourceSize
		sources[i], err = DecodeSource(data[offset:])
		if err != nil {
			return Params{}, nil, err
		}
	}

	return params, sources, nil
}

// A FileStore persists the serialized bank to a file on the local
// filesystem.
type FileStore struct {
	Path string
}

// Save writes the blob to the store's path.
func (s FileStore) Save(data []byte) error {
	return os.WriteFile(s.Path, data, 0o644)
}

// Load reads the blob back from the store's path.
func (s FileStore) Load() ([]byte, error) {
	return os.ReadFile(s.Path)
}
