package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/inamate/designer/internal/raster"
)

// profile holds render settings. A TOML file provides the base values and
// flags given on the command line override them:
//
//	format = "jpeg"
//	scale = 2
//	quality = 85
//	bleed_safe = true
//	assets = "./data/assets"
type profile struct {
	Format    string  `toml:"format"`
	Scale     float64 `toml:"scale"`
	Quality   int     `toml:"quality"`
	BleedSafe bool    `toml:"bleed_safe"`
	Assets    string  `toml:"assets"`
}

func defaultProfile() profile {
	return profile{Format: string(raster.FormatPNG), Scale: 1, Quality: 92}
}

// loadProfile decodes path over the defaults. Unknown keys are an error so
// typos do not pass silently.
func loadProfile(path string) (profile, error) {
	p := defaultProfile()
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return p, fmt.Errorf("read profile %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return p, fmt.Errorf("profile %s: unknown key %q", path, undec[0].String())
	}
	return p, nil
}

// merge copies every flag the user set from flags into p.
func (p *profile) merge(flags *pflag.FlagSet, from profile) {
	if flags.Changed("format") {
		p.Format = from.Format
	}
	if flags.Changed("scale") {
		p.Scale = from.Scale
	}
	if flags.Changed("quality") {
		p.Quality = from.Quality
	}
	if flags.Changed("bleed-safe") {
		p.BleedSafe = from.BleedSafe
	}
	if flags.Changed("assets") {
		p.Assets = from.Assets
	}
}

func (p profile) validate() (raster.Format, error) {
	f, ok := raster.ParseFormat(p.Format)
	if !ok {
		return "", fmt.Errorf("unsupported format %q (want png or jpeg)", p.Format)
	}
	if p.Quality < 1 || p.Quality > 100 {
		return "", fmt.Errorf("quality %d out of range 1-100", p.Quality)
	}
	return f, nil
}
