package flow

import (
	"strconv"
	"strings"
)

// mediaSchemes and mediaExtensions are the whitelist for trailing-token media
// detection. The heuristic is deliberately isolated here: a URL-ish name
// token sitting next to the weight is a known fragility, covered by tests.
var mediaSchemes = []string{"http://", "https://"}

var mediaExtensions = []string{".gif", ".webp", ".apng"}

// isMediaRef reports whether a token looks like a media reference: it starts
// with a whitelisted URL scheme or ends in a known animated-image extension.
func isMediaRef(token string) bool {
	lower := strings.ToLower(token)
	for _, scheme := range mediaSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	for _, ext := range mediaExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ExerciseLine is a successfully parsed exercise specification.
type ExerciseLine struct {
	Name     string
	Reps     int
	Sets     int
	Weight   float64
	MediaRef string
}

const lineFormatHint = "format: <name> <reps> <sets> <weight>, e.g. \"Bench Press 12 3 60\" (weight 0 for bodyweight)"

// ParseExerciseLine parses one whitespace-delimited exercise line. An
// optional trailing media token is split off first; the last three remaining
// tokens are read right-to-left as weight (float), sets (int), reps (int);
// everything before them is the name. Returns a *ValidationError on any
// malformed input.
func ParseExerciseLine(text string) (ExerciseLine, error) {
	tokens := strings.Fields(text)

	var line ExerciseLine
	if len(tokens) > 0 && isMediaRef(tokens[len(tokens)-1]) {
		line.MediaRef = tokens[len(tokens)-1]
		tokens = tokens[:len(tokens)-1]
	}

	if len(tokens) < 4 {
		return ExerciseLine{}, validationf("that doesn't look like an exercise; %s", lineFormatHint)
	}

	weight, err := strconv.ParseFloat(tokens[len(tokens)-1], 64)
	if err != nil {
		return ExerciseLine{}, validationf("couldn't read the weight %q; %s", tokens[len(tokens)-1], lineFormatHint)
	}
	sets, err := strconv.Atoi(tokens[len(tokens)-2])
	if err != nil {
		return ExerciseLine{}, validationf("couldn't read the set count %q; %s", tokens[len(tokens)-2], lineFormatHint)
	}
	reps, err := strconv.Atoi(tokens[len(tokens)-3])
	if err != nil {
		return ExerciseLine{}, validationf("couldn't read the rep count %q; %s", tokens[len(tokens)-3], lineFormatHint)
	}

	line.Name = strings.Join(tokens[:len(tokens)-3], " ")
	if line.Name == "" {
		return ExerciseLine{}, validationf("the exercise needs a name; %s", lineFormatHint)
	}
	line.Reps = reps
	line.Sets = sets
	line.Weight = weight
	return line, nil
}
