package core

import (
	"net/http"
	"strings"
)

type PageAction int

const (
	ActionRenderHTML PageAction = iota
	ActionRenderJSON
	ActionVersionConflict
)

type PageRequest struct {
	IsInertia     bool
	Method        string
	ClientVersion string
	ServerVersion string
}

func DecidePageAction(req PageRequest) PageAction {
	if !req.IsInertia {
		return ActionRenderHTML
	}

	// Only GET visits can be replayed as a full reload.
	if req.Method == http.MethodGet && req.ServerVersion != "" && req.ClientVersion != req.ServerVersion {
		return ActionVersionConflict
	}

	return ActionRenderJSON
}

// RedirectStatus rewrites 302 answers to non-GET/POST visits into 303 so the
// browser follows them with GET.
func RedirectStatus(method string, status int) int {
	if status != http.StatusFound {
		return status
	}
	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return http.StatusSeeOther
	}
	return status
}

type PartialRequest struct {
	Component        string
	PartialComponent string
	PartialData      string
	PartialExcept    string
}

type PartialDecision struct {
	Partial bool
	Only    map[string]bool
	Except  map[string]bool
}

// DecidePartial applies partial reload headers. They only count when the
// client is reloading the very component being rendered.
func DecidePartial(req PartialRequest) PartialDecision {
	if req.PartialComponent == "" || req.PartialComponent != req.Component {
		return PartialDecision{}
	}

	decision := PartialDecision{Partial: true}
	decision.Only = splitKeys(req.PartialData)
	decision.Except = splitKeys(req.PartialExcept)
	return decision
}

// Includes reports whether a prop survives the partial reload filter.
func (d PartialDecision) Includes(key string) bool {
	if !d.Partial {
		return true
	}
	if d.Except[key] {
		return false
	}
	if len(d.Only) == 0 {
		return true
	}
	return d.Only[key]
}

func splitKeys(header string) map[string]bool {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	keys := map[string]bool{}
	for _, k := range strings.Split(header, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys[k] = true
		}
	}
	return keys
}
