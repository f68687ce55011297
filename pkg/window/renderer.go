package window

// Renderer draws a history snapshot. Implementations must not modify history;
// it may be shared with other renderers.
type Renderer interface {
	Render(history []float64)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(history []float64)

// Render calls f(history).
func (f RendererFunc) Render(history []float64) {
	f(history)
}

type multi []Renderer

// Multi returns a Renderer that hands every frame to each renderer in order.
// Nil renderers are skipped.
func Multi(renderers ...Renderer) Renderer {
	m := make(multi, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multi) Render(history []float64) {
	for _, r := range m {
		r.Render(history)
	}
}
