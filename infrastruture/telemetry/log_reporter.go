// Package telemetry forwards navigator status lines to operators.
package telemetry

import (
	"log"

	"github.com/beka-birhanu/mazebot/config"
	"github.com/beka-birhanu/mazebot/navigator"
)

// LogReporter prints status lines to a logger.
// Implements navigator.Reporter.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter creates a LogReporter writing to logger.
func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report prints s, coloured by outcome.
func (r *LogReporter) Report(s navigator.Status) {
	switch s.Outcome {
	case navigator.OutcomeReached:
		r.logger.Printf("%s[DONE]%s %s", config.ColorGreen, config.LogColorReset, s)
	case navigator.OutcomeUnsolvable, navigator.OutcomeAborted:
		r.logger.Printf("%s[ERROR]%s %s", config.LogErrorColor, config.LogColorReset, s)
	default:
		if s.Decision == navigator.DecisionBacktrack {
			r.logger.Printf("%s[BACK]%s %s", config.ColorMagenta, config.LogColorReset, s)
			return
		}
		r.logger.Printf("%s[INFO]%s %s", config.LogInfoColor, config.LogColorReset, s)
	}
}
