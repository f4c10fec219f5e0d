package matcher

const (
	DefaultK1      = 1.5
	DefaultB       = 0.75
	DefaultEpsilon = 0.25
)

type Option func(*options)

type options struct {
	k1        float64
	b         float64
	epsilon   float64
	tokenizer Tokenizer
}

func defaultOptions() *options {
	return &options{
		k1:        DefaultK1,
		b:         DefaultB,
		epsilon:   DefaultEpsilon,
		tokenizer: WhitespaceTokenizer,
	}
}

// WithK1 sets the term frequency saturation parameter
func WithK1(k1 float64) Option {
	return func(o *options) {
		o.k1 = k1
	}
}

// WithB sets the document length normalization parameter
func WithB(b float64) Option {
	return func(o *options) {
		o.b = b
	}
}

// WithEpsilon sets the fraction of the mean idf used as the floor for very common terms
func WithEpsilon(epsilon float64) Option {
	return func(o *options) {
		o.epsilon = epsilon
	}
}

func WithTokenizer(tokenizer Tokenizer) Option {
	return func(o *options) {
		if tokenizer != nil {
			o.tokenizer = tokenizer
		}
	}
}
