package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher/mode"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/padding"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/transform"
	"git.gammaspectra.live/P2Pool/threefish/threefish"
	"git.gammaspectra.live/P2Pool/threefish/utils"
)

var errMissingMaterial = errors.New("key, IV and tweak must all be configured, create them with -genconfig")

type options struct {
	config    string
	genConfig string
	decrypt   bool
	variant   int
	mode      string
	padding   string
	key       threefish.HexBytes
	iv        threefish.HexBytes
	tweak     threefish.HexBytes
	debug     bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("threefish", flag.ContinueOnError)
	fs.StringVar(&opts.config, "config", "", "Path to a JSON or TOML key configuration file")
	fs.StringVar(&opts.genConfig, "genconfig", "", "Generate missing key material, write the configuration to this path and exit")
	fs.BoolVar(&opts.decrypt, "decrypt", false, "Decrypt stdin instead of encrypting it")
	fs.IntVar(&opts.variant, "variant", 0, "Threefish variant: 256, 512 or 1024")
	fs.StringVar(&opts.mode, "mode", "", "Block mode: ECB, CBC, CFB, OFB or CTR")
	fs.StringVar(&opts.padding, "padding", "", "Padding: None, Zeros, PKCS7, ANSIX923 or ISO10126")
	fs.TextVar(&opts.key, "key", threefish.HexBytes(nil), "Key, hex")
	fs.TextVar(&opts.iv, "iv", threefish.HexBytes(nil), "IV, hex")
	fs.TextVar(&opts.tweak, "tweak", threefish.HexBytes(nil), "Tweak, hex")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func (opts *options) loadConfig() (cfg *threefish.Config, err error) {
	cfg = threefish.DefaultConfig()
	if opts.config != "" {
		if cfg, err = threefish.LoadConfig(opts.config); err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.config, err)
		}
	}

	if opts.variant != 0 {
		cfg.Variant = opts.variant
	}
	if opts.mode != "" {
		if cfg.Mode, err = mode.Parse(opts.mode); err != nil {
			return nil, err
		}
	}
	if opts.padding != "" {
		if cfg.Padding, err = padding.Parse(opts.padding); err != nil {
			return nil, err
		}
	}
	if len(opts.key) > 0 {
		cfg.Key = opts.key
	}
	if len(opts.iv) > 0 {
		cfg.IV = opts.iv
	}
	if len(opts.tweak) > 0 {
		cfg.Tweak = opts.tweak
	}
	return cfg, cfg.Validate()
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.debug {
		utils.GlobalLogLevel |= utils.LogLevelDebug
		utils.LogFile = true
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	defer cfg.Dispose()

	tf, err := cfg.Algorithm()
	if err != nil {
		return err
	}
	defer tf.Dispose()

	if opts.genConfig != "" {
		if err = cfg.Capture(tf); err != nil {
			return err
		}
		if err = cfg.Save(opts.genConfig); err != nil {
			return err
		}
		utils.Logf("threefish", "wrote %s configuration to %s", tf.Name(), opts.genConfig)
		return nil
	}

	// generated material is never shown, so it could not be used to decrypt
	if cfg.Key == nil || cfg.Tweak == nil || (cfg.IV == nil && cfg.Mode.RequiresIV()) {
		return errMissingMaterial
	}

	var t *transform.CipherTransform
	if opts.decrypt {
		t, err = tf.CreateDecryptor()
	} else {
		t, err = tf.CreateEncryptor()
	}
	if err != nil {
		return err
	}

	out := bufio.NewWriter(stdout)
	w := transform.NewWriter(out, t)
	n, err := io.Copy(w, stdin)
	if err != nil {
		// no final block is written for a broken stream
		t.Dispose()
		utils.Errorf("threefish", "stream aborted after %sB", utils.SiUnits(float64(n), 2))
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	if err = out.Flush(); err != nil {
		return err
	}

	if utils.IsLogLevelDebug() {
		utils.Debugf("threefish", "%s %s/%s/%s processed %sB", t.Direction(), tf.Name(), tf.Mode(), tf.Padding(), utils.SiUnits(float64(n), 2))
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		utils.Fatalf("%s", err)
	}
}
