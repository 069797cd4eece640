package threefish

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/mode"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/padding"
	"git.gammaspectra.live/P2Pool/threefish/tweakable"
	"git.gammaspectra.live/P2Pool/threefish/utils"
	"github.com/BurntSushi/toml"
	"github.com/tmthrgd/go-hex"
)

// HexBytes is a byte string written as lowercase hex in config files.
type HexBytes []byte

func (h HexBytes) MarshalText() ([]byte, error) {
	buf := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(buf, h)
	return buf, nil
}

func (h *HexBytes) UnmarshalText(text []byte) error {
	buf := make([]byte, hex.DecodedLen(len(text)))
	if _, err := hex.Decode(buf, text); err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	*h = buf
	return nil
}

// Config selects a variant, mode and padding and optionally carries the key
// material. Missing key, IV or tweak are generated by Algorithm.
type Config struct {
	Variant int             `json:"variant" toml:"variant"`
	Mode    mode.BlockMode  `json:"mode" toml:"mode"`
	Padding padding.Padding `json:"padding" toml:"padding"`

	Key   HexBytes `json:"key,omitempty" toml:"key,omitempty"`
	IV    HexBytes `json:"iv,omitempty" toml:"iv,omitempty"`
	Tweak HexBytes `json:"tweak,omitempty" toml:"tweak,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Variant: Params512.StateSize(),
		Mode:    tweakable.DefaultMode,
		Padding: tweakable.DefaultPadding,
	}
}

// LoadConfig reads a Config from a TOML file if path ends in .toml and from
// JSON otherwise. Unknown keys are rejected. Fields absent from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unsupported key in configuration file: [%s]", undecoded[0])
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		defer blockcipher.Wipe(data)
		if err = utils.UnmarshalJSONStrict(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field that is set.
func (c *Config) Validate() error {
	p, ok := ParamsForSize(c.Variant)
	if !ok {
		return fmt.Errorf("%w: variant %d, want 256, 512 or 1024", blockcipher.ErrUnsupported, c.Variant)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: block mode %d", blockcipher.ErrUnsupported, int(c.Mode))
	}
	if !c.Padding.Valid() {
		return fmt.Errorf("%w: padding %d", blockcipher.ErrUnsupported, int(c.Padding))
	}

	bs := p.BlockSize()
	var errs []error
	if c.Key != nil && len(c.Key) != bs {
		errs = append(errs, blockcipher.NewSizeError("key", len(c.Key), blockcipher.Exact(bs*8)))
	}
	if c.IV != nil && len(c.IV) != bs {
		errs = append(errs, blockcipher.NewSizeError("IV", len(c.IV), blockcipher.Exact(bs*8)))
	}
	if c.Tweak != nil && len(c.Tweak) != TweakSize {
		errs = append(errs, blockcipher.NewSizeError("tweak", len(c.Tweak), blockcipher.Exact(TweakSize*8)))
	}
	return errors.Join(errs...)
}

// Algorithm builds the configured Threefish.
func (c *Config) Algorithm() (*Threefish, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p, _ := ParamsForSize(c.Variant)
	t := New(p)

	err := errors.Join(t.SetMode(c.Mode), t.SetPadding(c.Padding))
	if err == nil && c.Key != nil {
		err = t.SetKey(c.Key)
	}
	if err == nil && c.IV != nil {
		err = t.SetIV(c.IV)
	}
	if err == nil && c.Tweak != nil {
		err = t.SetTweak(c.Tweak)
	}
	if err != nil {
		t.Dispose()
		return nil, err
	}
	return t, nil
}

// Capture copies the key material in use by t into c, generating any that t
// does not have yet.
func (c *Config) Capture(t *Threefish) (err error) {
	if c.Key, err = t.Key(); err != nil {
		return err
	}
	if c.IV, err = t.IV(); err != nil {
		return err
	}
	if c.Tweak, err = t.Tweak(); err != nil {
		return err
	}
	c.Variant = t.Params().StateSize()
	c.Mode = t.Mode()
	c.Padding = t.Padding()
	return nil
}

// Encode writes c as TOML if path ends in .toml and as indented JSON otherwise.
func (c *Config) Encode(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	data, err := utils.MarshalJSONIndent(c, "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save writes c to path with owner-only permissions.
func (c *Config) Save(path string) error {
	data, err := c.Encode(path)
	if err != nil {
		return err
	}
	defer blockcipher.Wipe(data)
	return os.WriteFile(path, data, 0o600)
}

// Dispose wipes the key material held by c.
func (c *Config) Dispose() {
	blockcipher.Wipe(c.Key)
	blockcipher.Wipe(c.IV)
	blockcipher.Wipe(c.Tweak)
	c.Key, c.IV, c.Tweak = nil, nil, nil
}
