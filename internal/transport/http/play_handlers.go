package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizbox-service/internal/player"
)

type sessionResponse struct {
	SessionID string       `json:"sessionId"`
	State     player.State `json:"state"`
}

type answerRequest struct {
	QuestionIndex int      `json:"questionIndex"`
	AnswerIDs     []string `json:"answerIds"`
}

// stateErrorResponse carries the unchanged state alongside a rejected transition.
type stateErrorResponse struct {
	Error string       `json:"error"`
	State player.State `json:"state"`
}

func (a *API) HandlePreview(w http.ResponseWriter, r *http.Request) {
	preview, err := a.play.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.logServiceError("quiz preview", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (a *API) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	sid, st, err := a.play.Open(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		a.logServiceError("open session", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sid, State: st})
}

func (a *API) HandleSessionState(w http.ResponseWriter, r *http.Request) {
	st, err := a.play.State(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) HandleStart(w http.ResponseWriter, r *http.Request) {
	st, err := a.play.Start(r.Context(), chi.URLParam(r, "sid"))
	writeTransition(w, st, err)
}

func (a *API) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid answer payload"})
		return
	}
	st, err := a.play.Answer(r.Context(), chi.URLParam(r, "sid"), req.QuestionIndex, req.AnswerIDs)
	writeTransition(w, st, err)
}

func (a *API) HandleBack(w http.ResponseWriter, r *http.Request) {
	st, err := a.play.Back(r.Context(), chi.URLParam(r, "sid"))
	writeTransition(w, st, err)
}

func (a *API) HandleReset(w http.ResponseWriter, r *http.Request) {
	st, err := a.play.Reset(r.Context(), chi.URLParam(r, "sid"))
	writeTransition(w, st, err)
}

func (a *API) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	a.play.Close(r.Context(), chi.URLParam(r, "sid"))
	w.WriteHeader(http.StatusNoContent)
}

func writeTransition(w http.ResponseWriter, st player.State, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, st)
		return
	}
	if st.Phase == "" {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, statusFor(err), stateErrorResponse{Error: err.Error(), State: st})
}
