package logx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Output       string `split_words:"true" default:"stdout"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
	Output:       OutputStdout,
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Output)) {
	case "", OutputStdout, OutputStderr:
		return nil
	default:
		return fmt.Errorf("unsupported log output %q", c.Output)
	}
}

func (c Config) writer() io.Writer {
	if strings.EqualFold(strings.TrimSpace(c.Output), OutputStderr) {
		return os.Stderr
	}
	return os.Stdout
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

func Init(opts ...Config) {
	conf := safe(opts...)
	out := conf.writer()

	if conf.PrettyFormat {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}

	if conf.Debug {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	log.Logger = log.Logger.With().Caller().Stack().Logger()
}

// UseStderr re-targets the global logger at stderr, keeping its level.
// Stdio transports need stdout for protocol frames.
func UseStderr(conf Config) {
	conf.Output = OutputStderr
	Init(conf)
}
