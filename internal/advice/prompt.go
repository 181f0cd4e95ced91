package advice

import (
	"fmt"
	"strings"
)

// PromptInput carries everything rendered into the advice prompt
type PromptInput struct {
	Competitor         string
	Statistics         string
	Opponent           string
	OpponentStatistics string
}

// BuildPrompt renders the advice prompt. Without an opponent the comparison
// paragraph is left out.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("You are a sports trading analyst.\n")
	fmt.Fprintf(&b, "Season statistics for %s: %s.\n", in.Competitor, orNone(in.Statistics))

	if in.Opponent != "" {
		fmt.Fprintf(&b, "Their next opponent is %s. Season statistics for %s: %s.\n",
			in.Opponent, in.Opponent, orNone(in.OpponentStatistics))
		fmt.Fprintf(&b, "Compare both teams and assess how %s is likely to perform in that match.\n", in.Competitor)
	} else {
		fmt.Fprintf(&b, "Assess the current form of %s from these statistics.\n", in.Competitor)
	}

	b.WriteString("Keep the assessment under 80 words and start it with \"Perf:\".\n")
	b.WriteString("Finish with a final line that is exactly \"Order: buy\" or \"Order: sell\".")

	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "no statistics available"
	}
	return s
}
