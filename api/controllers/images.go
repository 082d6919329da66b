package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakmarket/storefront-backend/internal/images"
)

// ServeProfileImage serves a profile image from disk, falling back to the
// bundled defaults and finally redirecting to the external placeholder.
func ServeProfileImage(svc *images.Service) http.HandlerFunc {
	return serveImage(svc, images.KindProfile)
}

// ServeProductImage serves a product image with the same fallback chain.
func ServeProductImage(svc *images.Service) http.HandlerFunc {
	return serveImage(svc, images.KindProduct)
}

func serveImage(svc *images.Service, kind images.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := svc.Resolve(chi.URLParam(r, "imageName"), kind)
		if res.LocalPath != "" {
			http.ServeFile(w, r, res.LocalPath)
			return
		}
		http.Redirect(w, r, res.RedirectURL, http.StatusFound)
	}
}
