package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()

	greenCheck = color.GreenString("✔")
	redCross   = color.RedString("✖")
)

// BeQuietError signals that the error was already reported to the user
// and the generic failure log should be suppressed.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "exiting"
}

func logError(err error, correlation, msg string) error {
	if correlation != "" {
		log.Error().Msgf("%s %s (correlation ID: %s)", redCross, msg, correlation)
	} else {
		log.Error().Msgf("%s %s", redCross, msg)
	}
	log.Error().Msgf("error: %v", err)
	return BeQuietError{}
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf(greenCheck+" "+format, args...)
}

func applyTableFormat(t table.Writer) {
	t.SetStyle(table.StyleLight)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// readSource resolves a policy source argument: a literal policy if it
// contains a brace or semicolon, "-" for stdin, otherwise a file path.
func readSource(arg string) (string, error) {
	if arg == "-" {
		log.Debug().Msg("Reading policy source from stdin")
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return "", fmt.Errorf("failed to read policy from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if strings.ContainsAny(arg, "(;") {
		return arg, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("failed to read policy file '%s': %w", arg, err)
	}
	return strings.TrimSpace(string(data)), nil
}
