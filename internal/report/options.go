package report

import "log/slog"

type Option func(*options)

type options struct {
	log   *slog.Logger
	vocab Vocabulary
}

// WithLogger sets the logger that receives per-cell diagnostics.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.log = l } }

// WithVocabulary replaces the default cell vocabulary.
func WithVocabulary(v Vocabulary) Option { return func(o *options) { o.vocab = v } }

func newOptions(opts []Option) options {
	o := options{vocab: DefaultVocabulary()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o
}
