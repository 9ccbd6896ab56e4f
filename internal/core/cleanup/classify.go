package cleanup

import (
	"errors"
	"strings"
)

// ErrTimedOut is returned when a mutation did not finish inside its time budget.
// The remote call may still have been applied server-side.
var ErrTimedOut = errors.New("operation timed out")

// Outcome is the result of one attempted mutation.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeTimedOut        Outcome = "timed_out"
	OutcomeFailedTransient Outcome = "failed_transient"
	OutcomeFailedPermanent Outcome = "failed_permanent"
)

// Classifier decides whether a mutation failure can never succeed.
type Classifier interface {
	IsPermanent(err error) bool
}

// PermanentMarkers are the message fragments that mark a failure as permanent.
var PermanentMarkers = []string{"400", "bad request", "archived", "not found", "forbidden"}

// SubstringClassifier treats an error as permanent when its message contains
// any of Markers, ignoring case.
type SubstringClassifier struct {
	Markers []string
}

// DefaultClassifier returns the classifier used for the Reddit API.
func DefaultClassifier() SubstringClassifier {
	return SubstringClassifier{Markers: PermanentMarkers}
}

// IsPermanent implements Classifier.
func (c SubstringClassifier) IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range c.Markers {
		if strings.Contains(msg, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// Resolve maps the error returned by a bounded mutation to an Outcome.
// Timeouts are always retry-eligible and never inspected by the classifier.
func Resolve(err error, classifier Classifier) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrTimedOut):
		return OutcomeTimedOut
	case classifier.IsPermanent(err):
		return OutcomeFailedPermanent
	default:
		return OutcomeFailedTransient
	}
}
