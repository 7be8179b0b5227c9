package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/inertia"
	"github.com/popalexr/Travel-Recommendation/internal/logging"
)

// PropsFunc builds the page props of one request.
type PropsFunc func(req *http.Request) (inertia.Props, error)

func fixedProps(props inertia.Props) PropsFunc {
	return func(*http.Request) (inertia.Props, error) { return props, nil }
}

// PageHandler renders one Inertia page component.
type PageHandler struct {
	renderer  *inertia.Renderer
	component string
	props     PropsFunc
}

func NewPageHandler(renderer *inertia.Renderer, component string, props PropsFunc) http.Handler {
	return &PageHandler{renderer: renderer, component: component, props: props}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var props inertia.Props
	if h.props != nil {
		p, err := h.props(req)
		if err != nil {
			h.serveError(w, req, err)
			return
		}
		props = p
	}

	if err := h.renderer.Render(w, req, h.component, props); err != nil {
		logging.FromContext(req.Context()).Error("page render failed",
			zap.String("component", h.component), zap.Error(err))
	}
}

func (h *PageHandler) serveError(w http.ResponseWriter, req *http.Request, err error) {
	logging.FromContext(req.Context()).Error("page props failed",
		zap.String("component", h.component), zap.Error(err))
	h.renderer.Error(w, http.StatusInternalServerError, err)
}
