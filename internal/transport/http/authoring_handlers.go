package http

import (
	"bufio"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quizbox-service/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type imageResponse struct {
	URL string `json:"url"`
}

func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid login payload"})
		return
	}
	token, err := a.auth.Login(req.Username, req.Password)
	if err != nil {
		a.log.Info("operator login rejected", zap.String("username", req.Username), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (a *API) HandleListQuizzes(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	list, err := a.authoring.List(r.Context(), limit)
	if err != nil {
		a.log.Error("list quizzes", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) HandleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := decodeJSON(r, &quiz); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid quiz payload"})
		return
	}
	quiz.ID = ""
	saved, err := a.authoring.Save(r.Context(), quiz)
	if err != nil {
		a.logServiceError("create quiz", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (a *API) HandleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.authoring.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.logServiceError("get quiz", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) HandleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := decodeJSON(r, &quiz); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid quiz payload"})
		return
	}
	quiz.ID = chi.URLParam(r, "id")
	saved, err := a.authoring.Save(r.Context(), quiz)
	if err != nil {
		a.logServiceError("update quiz", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (a *API) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	embed, err := a.authoring.EmbedCode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.logServiceError("embed code", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, embed)
}

func (a *API) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	body := bufio.NewReader(file)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff, _ := body.Peek(512)
		contentType = http.DetectContentType(sniff)
	}

	url, err := a.authoring.UploadImage(r.Context(), header.Filename, body, header.Size, contentType)
	if err != nil {
		a.logServiceError("upload image", err)
		writeServiceError(w, err)
		return
	}
	if a.metrics != nil {
		a.metrics.ImagesUploaded.Inc()
	}
	writeJSON(w, http.StatusCreated, imageResponse{URL: url})
}

// logServiceError logs failures that are not the caller's fault.
func (a *API) logServiceError(op string, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		a.log.Error(op, zap.Error(err))
	}
}
