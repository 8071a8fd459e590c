package generate

import "context"

const fallbackPython = `def hello_world():
    """Simple fallback function"""
    print('Hello, World!')

if __name__ == '__main__':
    hello_world()
`

// Fallback is the offline generator used when no provider is configured.
// Generate returns a fixed snippet and Rewrite returns its input unchanged,
// so an improvement loop driven by it converges without network access.
type Fallback struct{}

func (Fallback) Name() string { return "fallback" }

func (Fallback) Generate(context.Context, string) (string, error) {
	return fallbackPython, nil
}

func (Fallback) Rewrite(_ context.Context, code string, _ []string, _ string) (string, error) {
	return code, nil
}
