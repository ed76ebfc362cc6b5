package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"snapfeed/internal/preview"
)

// handleFile streams a stored file, raw or as a bounded preview. Preview
// parameters default to the feed's standard 2000x2000 top-anchored crop.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/files/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || (sub != "" && sub != "preview") {
		http.NotFound(w, r)
		return
	}

	rc, info, err := s.app.OpenFile(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer rc.Close()

	if sub == "" {
		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		}
		if info.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		}
		_, _ = io.Copy(w, rc)
		return
	}

	opts := previewOptions(r)
	rendered, contentType, err := preview.Render(rc, opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "file is not a previewable image")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, bytes.NewReader(rendered))
}

// handleAvatar streams an account's generated avatar.
func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/avatars/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	rc, info, err := s.app.OpenAvatar(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, rc)
}

func previewOptions(r *http.Request) preview.Options {
	opts := preview.DefaultOptions
	opts.Width = parseIntParam(r, "width", opts.Width)
	opts.Height = parseIntParam(r, "height", opts.Height)
	opts.Quality = parseIntParam(r, "quality", opts.Quality)
	if g := r.URL.Query().Get("gravity"); g == string(preview.GravityCenter) {
		opts.Gravity = preview.GravityCenter
	}
	return opts
}
