package models

import "fmt"

// VoteChoice is the side a user picked on a question
type VoteChoice string

const (
	VoteYes VoteChoice = "yes"
	VoteNo  VoteChoice = "no"
)

// ParseVoteChoice converts "yes"/"no" into a VoteChoice
func ParseVoteChoice(s string) (VoteChoice, error) {
	switch VoteChoice(s) {
	case VoteYes, VoteNo:
		return VoteChoice(s), nil
	default:
		return "", fmt.Errorf("invalid vote choice %q", s)
	}
}

// Bool maps yes to true and no to false, matching a resolution outcome
func (c VoteChoice) Bool() bool {
	return c == VoteYes
}

// ChoiceFromBool is the inverse of Bool
func ChoiceFromBool(b bool) VoteChoice {
	if b {
		return VoteYes
	}
	return VoteNo
}

// VoteCount represents the vote tally for a question
type VoteCount struct {
	Yes int
	No  int
}

// Total returns the number of distinct voters
func (vc VoteCount) Total() int {
	return vc.Yes + vc.No
}
