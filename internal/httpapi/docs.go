package httpapi

import (
	"net/http"

	"github.com/tmaulida/flashstore/internal/httpapi/openapi"
)

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapi.YAML)
}
