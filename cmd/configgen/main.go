package main

import (
	"flag"

	"github.com/danmuck/tlns/internal/config"
	"github.com/danmuck/tlns/internal/logging"
	"github.com/rs/zerolog/log"
)

const defaultPath = "cmd/boardd/config.toml"

func main() {
	kind := flag.String("kind", "boardd", "config kind: boardd|scene")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to "+defaultPath+")")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	logging.ConfigureRuntime("configgen")

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath
		}
		switch *kind {
		case "boardd":
			cfg, err := config.Load(path)
			if err != nil {
				log.Fatal().Err(err).Str("path", path).Msg("invalid config")
			}
			log.Info().
				Str("path", path).
				Int("width", cfg.Board.Width).
				Int("height", cfg.Board.Height).
				Int("figures", len(cfg.Board.Figures)).
				Msg("validated boardd config")
		case "scene":
			figs, err := config.LoadScene(path)
			if err != nil {
				log.Fatal().Err(err).Str("path", path).Msg("invalid scene")
			}
			if _, err := config.Shapes(figs); err != nil {
				log.Fatal().Err(err).Str("path", path).Msg("invalid scene figure")
			}
			log.Info().Str("path", path).Int("figures", len(figs)).Msg("validated scene file")
		default:
			log.Fatal().Str("kind", *kind).Msg("unknown kind")
		}
		return
	}

	if *kind != "boardd" {
		log.Fatal().Str("kind", *kind).Msg("templates are only generated for boardd")
	}
	target := *output
	if target == "" {
		target = defaultPath
	}
	if err := config.WriteTemplate(target, *force); err != nil {
		log.Fatal().Err(err).Msg("write template")
	}
	log.Info().Str("path", target).Msg("wrote boardd config template")
}
