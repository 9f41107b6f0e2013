package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupJSON configures the standard logrus logger for JSON output on stdout
// at the given level ("debug", "info", "warn", ...).
func SetupJSON(level string) error {
	return setup(os.Stdout, level)
}

func setup(out io.Writer, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(&log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyMsg: "msg",
		},
	})

	return nil
}
