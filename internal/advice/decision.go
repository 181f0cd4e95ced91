package advice

import (
	"regexp"
	"strings"
)

// Decision is the structured trading signal extracted from advice text
type Decision string

const (
	DecisionBuy  Decision = "buy"
	DecisionSell Decision = "sell"
	// DecisionNone is stored when the response carries no recognisable token
	DecisionNone Decision = ""
)

var orderPattern = regexp.MustCompile(`(?i)order\s*:\s*(buy|sell)`)

// ParseDecision extracts the decision from a model response. An explicit
// "Order: buy|sell" wins and is removed from the returned advice text.
// Otherwise the first of "buy" or "sell" found anywhere decides and the text
// is returned as-is.
func ParseDecision(text string) (Decision, string) {
	if loc := orderPattern.FindStringSubmatchIndex(text); loc != nil {
		decision := Decision(strings.ToLower(text[loc[2]:loc[3]]))
		before := strings.TrimSpace(text[:loc[0]])
		after := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(text[loc[1]:]), ".,;:-"))
		switch {
		case before == "":
			return decision, after
		case after == "":
			return decision, before
		}
		return decision, before + " " + after
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "buy"):
		return DecisionBuy, strings.TrimSpace(text)
	case strings.Contains(lower, "sell"):
		return DecisionSell, strings.TrimSpace(text)
	}
	return DecisionNone, strings.TrimSpace(text)
}
