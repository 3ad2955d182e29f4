// Package config holds the overlay's feature toggles and settings.
//
// Settings come from a YAML file, then .env files and ASSET_OVERLAY_*
// variables override them:
//
//	cfg, err := config.Load("overlay.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.LoadEnv(); err != nil {
//	    return err
//	}
//	toggles := cfg.Toggles()
//
// Toggles is read on every open, so flipping a feature takes effect for the
// next asset the host opens.
package config
