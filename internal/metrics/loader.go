package metrics

import "context"

// Loader runs one fetch → synthesize cycle. Prior cycles are never carried
// forward; only a successful fetch feeds existing values into the jitter.
type Loader struct {
	source Source
	synth  *Synthesizer
}

func NewLoader(source Source, synth *Synthesizer) *Loader {
	if synth == nil {
		synth = NewSynthesizer(0)
	}
	return &Loader{source: source, synth: synth}
}

// Load always returns populated metrics; fetch failures fall back to synthetic data.
func (l *Loader) Load(ctx context.Context) Metrics {
	return l.synth.Synthesize(FetchOrNil(ctx, l.source))
}
