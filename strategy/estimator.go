package strategy

import (
	"errors"
	"log"

	"github.com/psybedev/tracktic-strategy/telemetry"
)

// Estimator is the top-level façade (§4.6): it owns a telemetry source and
// at most one live SessionProgress, attaching and discarding the latter as
// sessions come and go. Callers drive it once per tick.
type Estimator struct {
	source   telemetry.Source
	history  History
	progress *SessionProgress
	reporter *ErrorReporter
}

// NewEstimator wires a telemetry source and a history store into a fresh
// Estimator. No session is attached until the first Update call succeeds in
// reading session info from the source.
func NewEstimator(source telemetry.Source, history History) *Estimator {
	return &Estimator{
		source:   source,
		history:  history,
		reporter: NewErrorReporter(64),
	}
}

// Update advances the estimator by one tick: attaching a session if none is
// live, delegating to it otherwise, and detaching on expiry so the next
// call re-attaches fresh. out is reset to a disconnected state when no
// session can be attached or the session expires; otherwise it is marked
// connected and populated by the delegated SessionProgress.Update.
func (est *Estimator) Update(settings UserSettings, out *Estimation) error {
	if est.progress == nil {
		progress, err := NewSessionProgress(est.source, est.history, settings)
		if err != nil {
			est.report(err)
			*out = Estimation{Connected: false}
			return nil
		}
		est.progress = progress
		out.Connected = true
	}

	err := est.progress.Update(settings, out)
	if err == nil {
		return nil
	}

	var estErr *EstimatorError
	if errors.As(err, &estErr) && estErr.Kind == ErrorKindSessionExpired {
		est.progress = nil
		*out = Estimation{Connected: false}
		return nil
	}

	est.report(err)
	if estErr != nil && !estErr.Kind.Retryable() {
		est.progress = nil
		*out = Estimation{Connected: false}
	}
	return nil
}

// Stats returns the accumulated per-kind error counts, for diagnostics.
func (est *Estimator) Stats() map[ErrorKind]int { return est.reporter.Stats() }

func (est *Estimator) report(err error) {
	var estErr *EstimatorError
	if errors.As(err, &estErr) {
		est.reporter.Report(estErr)
		log.Printf("strategy: %v", estErr)
		return
	}
	log.Printf("strategy: %v", err)
}
