package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	assetoverlay "github.com/wippyai/asset-overlay"
	"github.com/wippyai/asset-overlay/config"
	"github.com/wippyai/asset-overlay/dispatch"
	"github.com/wippyai/asset-overlay/handle"
	"github.com/wippyai/asset-overlay/hostfs"
	"github.com/wippyai/asset-overlay/materialbin"
	"github.com/wippyai/asset-overlay/resolver"
	"github.com/wippyai/asset-overlay/transcoder"
	"github.com/wippyai/asset-overlay/vio"
)

type flags struct {
	assets      string
	packs       string
	configFile  string
	envFile     string
	features    string
	dump        bool
	transcode   string
	reference   string
	output      string
	interactive bool
	verbose     bool
}

func main() {
	var f flags
	flag.StringVar(&f.assets, "assets", "", "Asset archive directory")
	flag.StringVar(&f.packs, "packs", "", "Resource packs, highest priority first (a,b)")
	flag.StringVar(&f.configFile, "config", "", "YAML config file")
	flag.StringVar(&f.envFile, "env", "", ".env file (default ./.env if present)")
	flag.StringVar(&f.features, "features", "", "Features to enable (no_fog,classic_skins or all)")
	flag.BoolVar(&f.dump, "dump", false, "Write served content to stdout or -o")
	flag.StringVar(&f.transcode, "transcode", "", "Material file to transcode offline")
	flag.StringVar(&f.reference, "reference", "", "Reference material giving the target version")
	flag.StringVar(&f.output, "o", "", "Output file")
	flag.BoolVar(&f.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&f.verbose, "v", false, "Verbose development logging")
	flag.Parse()

	if err := run(f, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: assetlens -assets <dir> [-packs a,b] [-features f1,f2] [-dump] <path>...")
	fmt.Fprintln(os.Stderr, "       assetlens -transcode <in.material.bin> -reference <ref.material.bin> [-o out]")
	fmt.Fprintln(os.Stderr, "       assetlens -assets <dir> -i  (interactive mode)")
}

func run(f flags, paths []string) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, f.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if f.transcode != "" {
		return transcodeFile(logger, f.transcode, f.reference, f.output)
	}

	if cfg.Assets == "" || (len(paths) == 0 && !f.interactive) {
		usage()
		return fmt.Errorf("nothing to do")
	}

	native := hostfs.NewDir(cfg.Assets)
	defer func() { _ = native.CloseAll() }()

	var store resolver.Store
	if len(cfg.Packs) > 0 {
		packs := resolver.NewPackStore(nil)
		if err := packs.Mount(cfg.Packs...); err != nil {
			return fmt.Errorf("mount packs: %w", err)
		}
		defer packs.Unmount()
		store = packs
	}

	toggles := cfg.Toggles()
	opts := []assetoverlay.Option{assetoverlay.WithLogger(logger)}
	if len(cfg.ReferencePaths) > 0 {
		opts = append(opts, assetoverlay.WithReferencePaths(cfg.ReferencePaths...))
	}
	ov := assetoverlay.New(native, toggles, store, opts...)
	defer ov.Shutdown()

	if f.interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(ov, toggles, cfg.Assets)
	}

	out := io.Writer(os.Stdout)
	if f.dump && f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}

	fmt.Fprintf(os.Stderr, "host material version: %s\n", ov.HostVersion())
	for _, p := range paths {
		r, err := inspect(ov, p)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, r)
		if f.dump && r.data != nil {
			if _, err := out.Write(r.data); err != nil {
				return fmt.Errorf("write %s: %w", p, err)
			}
		}
	}
	return nil
}

func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var envFiles []string
	if f.envFile != "" {
		envFiles = append(envFiles, f.envFile)
	}
	if err := cfg.LoadEnv(envFiles...); err != nil {
		return nil, err
	}

	if f.assets != "" {
		cfg.Assets = f.assets
	}
	if f.packs != "" {
		cfg.Packs = splitComma(f.packs)
	}
	if f.features != "" {
		features, err := config.ParseFeatures(f.features)
		if err != nil {
			return nil, err
		}
		for _, feat := range features {
			cfg.Features[feat] = true
		}
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

// result is what the host would see for one open.
type result struct {
	path    string
	outcome dispatch.Outcome
	data    []byte
}

func (r result) String() string {
	if r.outcome.ID == handle.Null {
		if r.outcome.Decision == dispatch.Blocked {
			return fmt.Sprintf("%s: blocked by %s", r.path, r.outcome.Rule)
		}
		return fmt.Sprintf("%s: not found", r.path)
	}
	rule := r.outcome.Rule
	if rule == "" {
		rule = "-"
	}
	return fmt.Sprintf("%s: %s rule=%s size=%d blake3=%s",
		r.path, r.outcome.Decision, rule, len(r.data), dispatch.Digest(r.data))
}

// inspect opens p through the overlay and reads it with the native API, as
// the host would.
func inspect(ov *assetoverlay.Overlay, p string) (result, error) {
	r := result{path: p, outcome: ov.OpenOutcome(p, vio.ModeStreaming)}
	id := r.outcome.ID
	if id == handle.Null {
		return r, nil
	}
	defer ov.Close(id)

	size := ov.Length64(id)
	if size < 0 {
		return r, fmt.Errorf("%s: length unavailable", p)
	}
	data := make([]byte, 0, size)
	chunk := make([]byte, 32*1024)
	for {
		n := ov.Read(id, chunk)
		if n < 0 {
			return r, fmt.Errorf("%s: read failed", p)
		}
		if n == 0 {
			break
		}
		data = append(data, chunk[:n]...)
	}
	r.data = data
	return r, nil
}

// transcodeFile converts a material file to the version of the reference
// material, without an asset archive.
func transcodeFile(logger *zap.Logger, in, ref, out string) error {
	if ref == "" {
		return fmt.Errorf("-transcode needs -reference")
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	_, from, err := materialbin.Detect(data)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}

	refDir := hostfs.NewDir(filepath.Dir(ref))
	defer func() { _ = refDir.CloseAll() }()
	tc := transcoder.New(refDir, transcoder.WithReferencePaths(filepath.Base(ref)))

	host := tc.HostVersion()
	if host == materialbin.Unknown {
		return fmt.Errorf("reference %s: version not detected", ref)
	}
	converted, changed := tc.Transcode(data)
	if !changed {
		converted = data
	}
	logger.Info("material transcoded",
		zap.Stringer("from", from),
		zap.Stringer("to", host),
		zap.Bool("changed", changed),
		zap.String("blake3", dispatch.Digest(converted)))

	if out == "" {
		_, err = os.Stdout.Write(converted)
		return err
	}
	return os.WriteFile(out, converted, 0o644)
}

func splitComma(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}
