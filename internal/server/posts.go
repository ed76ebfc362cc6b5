package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"snapfeed/internal/app"
	"snapfeed/pkg/domain"
)

const maxUploadBytes = 32 << 20

// handlePosts serves the post collection: the home feed, the cursor feed,
// caption search and post creation.
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request, user domain.UserProfile) {
	switch r.Method {
	case http.MethodGet:
		s.handleListPosts(w, r, user)
	case http.MethodPost:
		s.handleCreatePost(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request, user domain.UserProfile) {
	q := r.URL.Query()
	var (
		posts []domain.Post
		err   error
	)
	switch {
	case q.Get("q") != "":
		posts, err = s.app.SearchPosts(r.Context(), q.Get("q"))
	case q.Has("cursor"):
		posts, err = s.app.Posts(r.Context(), q.Get("cursor"))
	default:
		posts, err = s.app.RecentPosts(r.Context())
	}
	if err != nil {
		writeAppError(w, err)
		return
	}
	views := viewPosts(posts, user.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"items": views,
		"count": len(views),
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request, user domain.UserProfile) {
	upload, form, ok := postForm(w, r, true)
	if !ok {
		return
	}
	defer upload.close()
	post, err := s.app.CreatePost(r.Context(), app.PostInput{
		CreatorID: user.ID,
		Caption:   form.caption,
		Location:  form.location,
		Tags:      form.tags,
		Image:     upload.payload,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewPost(post, user.ID))
}

// handlePostByID serves a single post and its like/save sub-resources.
func (s *Server) handlePostByID(w http.ResponseWriter, r *http.Request, user domain.UserProfile) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(sub, "/") {
		http.NotFound(w, r)
		return
	}
	switch sub {
	case "":
		s.handlePost(w, r, user, id)
	case "likes":
		s.handleLikePost(w, r, user, id)
	case "save":
		s.handleSavePost(w, r, user, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request, user domain.UserProfile, id string) {
	switch r.Method {
	case http.MethodGet:
		post, err := s.app.PostByID(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewPost(post, user.ID))
	case http.MethodPatch:
		s.handleUpdatePost(w, r, user, id)
	case http.MethodDelete:
		s.handleDeletePost(w, r, user, id)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request, user domain.UserProfile, id string) {
	if !s.requireOwnPost(w, r, user, id) {
		return
	}
	upload, form, ok := postForm(w, r, false)
	if !ok {
		return
	}
	defer upload.close()
	in := app.UpdatePostInput{
		PostID:   id,
		Caption:  form.caption,
		Location: form.location,
		Tags:     form.tags,
	}
	if upload.present {
		in.NewImage = &upload.payload
	}
	post, err := s.app.UpdatePost(r.Context(), in)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPost(post, user.ID))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, user domain.UserProfile, id string) {
	if !s.requireOwnPost(w, r, user, id) {
		return
	}
	if err := s.app.DeletePost(r.Context(), id, r.URL.Query().Get("imageId")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireOwnPost(w http.ResponseWriter, r *http.Request, user domain.UserProfile, id string) bool {
	post, err := s.app.PostByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return false
	}
	if post.CreatorID != user.ID {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request, user domain.UserProfile, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req likeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := s.app.LikePost(r.Context(), id, req.Likes)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPost(post, user.ID))
}

func (s *Server) handleSavePost(w http.ResponseWriter, r *http.Request, user domain.UserProfile, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	saved, err := s.app.SavePost(r.Context(), user.ID, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleSaves lists the caller's save records.
func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request, user domain.UserProfile) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	saves, err := s.app.SavedPostsByUser(r.Context(), user.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": saves,
		"count": len(saves),
	})
}

// handleSaveByID deletes a single save record.
func (s *Server) handleSaveByID(w http.ResponseWriter, r *http.Request, user domain.UserProfile) {
	id := strings.TrimPrefix(r.URL.Path, "/api/saves/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	saved, err := s.app.SavedPostByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if saved.UserID != user.ID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err := s.app.DeleteSavedPost(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type likeRequest struct {
	Likes []string `json:"likes"`
}

type postFormFields struct {
	caption  string
	location string
	tags     string
}

type formUpload struct {
	present bool
	payload app.Upload
	file    multipart.File
}

func (u formUpload) close() {
	if u.file != nil {
		u.file.Close()
	}
}

// postForm parses the multipart post form. The file part is required on
// create and optional on update.
func postForm(w http.ResponseWriter, r *http.Request, fileRequired bool) (formUpload, postFormFields, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return formUpload{}, postFormFields{}, false
	}
	fields := postFormFields{
		caption:  r.FormValue("caption"),
		location: r.FormValue("location"),
		tags:     r.FormValue("tags"),
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if fileRequired {
			writeError(w, http.StatusBadRequest, "file is required (field: file)")
			return formUpload{}, postFormFields{}, false
		}
		return formUpload{}, fields, true
	}
	upload := formUpload{
		present: true,
		file:    file,
		payload: app.Upload{
			Name:        header.Filename,
			Reader:      file,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		},
	}
	return upload, fields, true
}
