package predictions

import (
	"fmt"
	"strings"

	"predictor/models"
)

// InteractionKind says what a button press asks for
type InteractionKind int

const (
	KindVote InteractionKind = iota + 1
	KindResolve
)

func (k InteractionKind) String() string {
	switch k {
	case KindVote:
		return "vote"
	case KindResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

// Interaction is a decoded button custom id
type Interaction struct {
	Kind       InteractionKind
	Choice     models.VoteChoice // the vote, or the outcome for KindResolve
	QuestionID string
}

// customIDPrefixes lists every recognised prefix. Question ids contain
// underscores, so the id is whatever follows the prefix.
var customIDPrefixes = []struct {
	prefix string
	kind   InteractionKind
	choice models.VoteChoice
}{
	{"vote_yes_", KindVote, models.VoteYes},
	{"vote_no_", KindVote, models.VoteNo},
	{"resolve_yes_", KindResolve, models.VoteYes},
	{"resolve_no_", KindResolve, models.VoteNo},
}

// IsPredictionCustomID reports whether a component belongs to this feature
func IsPredictionCustomID(customID string) bool {
	for _, p := range customIDPrefixes {
		if strings.HasPrefix(customID, p.prefix) {
			return true
		}
	}
	return false
}

// ParseCustomID decodes a vote or resolve button id
func ParseCustomID(customID string) (Interaction, error) {
	for _, p := range customIDPrefixes {
		if id, ok := strings.CutPrefix(customID, p.prefix); ok {
			if id == "" {
				return Interaction{}, fmt.Errorf("custom id %q has no question id", customID)
			}
			return Interaction{Kind: p.kind, Choice: p.choice, QuestionID: id}, nil
		}
	}
	return Interaction{}, fmt.Errorf("unrecognised custom id %q", customID)
}

// CustomID encodes the interaction back into a button id
func (in Interaction) CustomID() string {
	return fmt.Sprintf("%s_%s_%s", in.Kind, in.Choice, in.QuestionID)
}

// Outcome is the resolution outcome carried by a resolve button
func (in Interaction) Outcome() bool {
	return in.Choice.Bool()
}

// VoteCustomID builds the id of a vote button
func VoteCustomID(choice models.VoteChoice, questionID string) string {
	return Interaction{Kind: KindVote, Choice: choice, QuestionID: questionID}.CustomID()
}

// ResolveCustomID builds the id of a resolve button
func ResolveCustomID(outcome bool, questionID string) string {
	return Interaction{Kind: KindResolve, Choice: models.ChoiceFromBool(outcome), QuestionID: questionID}.CustomID()
}
