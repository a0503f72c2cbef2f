package mdhtml

// DefaultMaxDepth is the block nesting limit applied when WithMaxDepth is not given.
const DefaultMaxDepth = 512

// RenderOption configures rendering behavior.
type RenderOption func(*renderConfig)

type renderConfig struct {
	maxDepth    int
	frontMatter func(Meta)
}

func newRenderConfig(opts []RenderOption) renderConfig {
	cfg := renderConfig{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithMaxDepth limits how deeply blocks may nest. Zero or a negative value
// removes the limit.
func WithMaxDepth(depth int) RenderOption {
	return func(cfg *renderConfig) {
		cfg.maxDepth = depth
	}
}

// WithFrontMatter registers a callback that receives the decoded front matter
// of a rendered document. It is only called when front matter is present.
func WithFrontMatter(fn func(Meta)) RenderOption {
	return func(cfg *renderConfig) {
		cfg.frontMatter = fn
	}
}
