package guard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Mode selects how a question is measured.
type Mode string

const (
	ModeWords Mode = "words"
	ModeChars Mode = "chars"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Limit is the maximum question length in the given mode.
type Limit struct {
	Mode Mode
	Max  int
}

// NewLimit picks the limit for mode; anything but "chars" counts words.
func NewLimit(mode string, maxWords, maxChars int) Limit {
	if Mode(strings.ToLower(mode)) == ModeChars {
		return Limit{Mode: ModeChars, Max: maxChars}
	}
	return Limit{Mode: ModeWords, Max: maxWords}
}

// Status describes a question against a Limit.
type Status struct {
	Count    int  `json:"count"`
	Max      int  `json:"max"`
	Mode     Mode `json:"mode"`
	Empty    bool `json:"empty"`
	Exceeded bool `json:"exceeded"`
}

// Allowed reports whether the question may be submitted.
func (s Status) Allowed() bool {
	return !s.Empty && !s.Exceeded
}

// CountWords counts runs of letters, digits and underscores.
func CountWords(s string) int {
	return len(wordPattern.FindAllStringIndex(s, -1))
}

// Check measures question. Blank questions are Empty regardless of mode.
func (l Limit) Check(question string) Status {
	st := Status{Max: l.Max, Mode: l.Mode, Empty: strings.TrimSpace(question) == ""}
	if l.Mode == ModeChars {
		st.Count = utf8.RuneCountInString(question)
	} else {
		st.Count = CountWords(question)
	}
	st.Exceeded = l.Max > 0 && st.Count > l.Max
	return st
}

func (l Limit) unit() string {
	if l.Mode == ModeChars {
		return "characters"
	}
	return "words"
}

// Guidance is the hint shown next to the question box.
func (l Limit) Guidance() string {
	return fmt.Sprintf("Keep your question under %d %s.", l.Max, l.unit())
}

// TooLongMessage is returned when a question exceeds the limit.
func (l Limit) TooLongMessage() string {
	return fmt.Sprintf("Your question is too long. Please shorten it to %d %s or fewer.", l.Max, l.unit())
}
