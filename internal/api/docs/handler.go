package docs

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	prefix   = "/docs"
	specURL  = prefix + "/swagger.yaml"
	indexURL = prefix + "/index.html"
)

//go:embed swagger.yaml
var document []byte

// RegisterRoutes mounts Swagger UI and the OpenAPI document under /docs
func RegisterRoutes(r chi.Router) {
	r.Get(prefix, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, indexURL, http.StatusFound)
	})
	r.Get(specURL, serveSpec)
	r.Get(prefix+"/*", httpSwagger.Handler(
		httpSwagger.URL(specURL),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
}

func serveSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(document)
}
