package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Options controls the global zerolog setup.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console or json
	NoColor bool
}

// InitDefault sets up a console logger before flags/config are parsed.
func InitDefault() {
	log.Logger = consoleLogger(false)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Init configures the global logger. A nil opts reads the log.* viper keys.
func Init(opts *Options) {
	if opts == nil {
		opts = &Options{
			Level:   viper.GetString("log.level"),
			Format:  viper.GetString("log.format"),
			NoColor: viper.GetBool("log.no_color"),
		}
	}

	switch strings.ToLower(opts.Format) {
	case "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		log.Logger = consoleLogger(opts.NoColor)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func consoleLogger(noColor bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}).With().Timestamp().Logger()
}
