package manager

import "github.com/rs/zerolog"

// LogPublisher writes lifecycle events to a zerolog logger at debug level.
// Prediction failures are logged at warn.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.Debug()
	if e.Name == "predict_error" {
		ev = p.log.Warn()
	}
	if e.ModelID != "" {
		ev = ev.Str("model", e.ModelID)
	}
	ev.Fields(e.Fields).Msg(e.Name)
}
