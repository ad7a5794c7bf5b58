package controllers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

type mediaReader interface {
	Download(ctx context.Context, key string) (*gcs.Object, error)
}

// MediaGet streams a stored object with its content type and etag.
func MediaGet(blobs mediaReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		if key == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Not found"))
			return
		}

		obj, err := blobs.Download(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer func() { _ = obj.Body.Close() }()

		w.Header().Set("Content-Type", obj.ContentType)
		if obj.ETag != "" {
			w.Header().Set("ETag", obj.ETag)
			if match := r.Header.Get("If-None-Match"); match != "" && match == obj.ETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		if obj.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(w, obj.Body); err != nil && logg != nil {
			logg.Warn(logg.WithFields(r.Context(), map[string]any{"object": key, "error": err.Error()}), "media stream interrupted")
		}
	}
}
