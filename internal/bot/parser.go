package bot

import (
	"strings"

	"github.com/rs/zerolog"
)

// ParseYesNo interprets a model response to a yes/no prompt. Model
// output is an unreliable boundary: anything that is not recognizably
// yes or no maps to false and logs the anomaly. This only works for
// prompts that instruct the model to answer with 'Yes' or 'No'.
// Only the leading word counts, so answers like "CANNOT ANSWER" or
// "EYES ONLY" fall through to the default instead of matching on a
// substring.
func ParseYesNo(logger zerolog.Logger, s string) bool {
	fields := strings.Fields(strings.ToUpper(s))
	if len(fields) > 0 {
		switch strings.Trim(fields[0], ".,!?:;\"'") {
		case "YES":
			return true
		case "NO":
			return false
		}
	}
	logger.Warn().Str("output", s).Msg("unrecognized yes/no model output, defaulting to no")
	return false
}
