package qa

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"doc-assistant/internal/guard"
	"doc-assistant/internal/httputil"
)

const (
	noKnowledgeInfo = "No knowledge loaded. Add PDFs to /knowledge or upload files."
	modelFailHint   = "Oops - the request was too large or something unexpected happened. " +
		"Please shorten the question or try again. If the issue persists, try fewer/smaller PDFs."
)

// Handler serves POST /api/query.
func Handler(svc *Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.FailJSON(log, w, http.StatusBadRequest, "invalid payload", err, nil)
			return
		}
		if req.Source == "" {
			req.Source = SourceBuiltin
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(log, w, err)
			return
		}

		ans, err := svc.Ask(r.Context(), req)
		var (
			tooLong  *TooLongError
			modelErr *ModelError
		)
		switch {
		case err == nil:
			httputil.WriteJSON(w, http.StatusOK, ans)
		case errors.Is(err, ErrNoKnowledge):
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"info": noKnowledgeInfo})
		case errors.Is(err, ErrEmptyQuestion):
			httputil.FailJSON(log, w, http.StatusBadRequest, "Please enter a question.", err, nil)
		case errors.As(err, &tooLong):
			httputil.FailJSON(log, w, http.StatusUnprocessableEntity, tooLong.Message, err, map[string]any{
				"count": tooLong.Status.Count,
				"max":   tooLong.Status.Max,
				"mode":  tooLong.Status.Mode,
			})
		case errors.As(err, &modelErr):
			httputil.FailJSON(log, w, http.StatusBadGateway, modelFailHint, err, map[string]any{
				"detail": modelErr.Err.Error(),
			})
		default:
			httputil.FailJSON(log, w, http.StatusInternalServerError, "failed to answer question", err, nil)
		}
	}
}

// KnowledgeHandler serves GET /api/knowledge with built-in corpus stats.
func KnowledgeHandler(pool BuiltinPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := pool.Load()
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"chunks":   len(p.Chunks),
			"files":    p.Files,
			"warnings": p.Warnings,
		})
	}
}

type checkRequest struct {
	Question string `json:"question"`
}

type checkResponse struct {
	guard.Status
	Allowed  bool   `json:"allowed"`
	Guidance string `json:"guidance"`
	Message  string `json:"message,omitempty"`
}

// CheckHandler serves POST /api/question/check, the live length counter.
func CheckHandler(limit guard.Limit, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.FailJSON(log, w, http.StatusBadRequest, "invalid payload", err, nil)
			return
		}
		st := limit.Check(req.Question)
		resp := checkResponse{Status: st, Allowed: st.Allowed(), Guidance: limit.Guidance()}
		if st.Exceeded {
			resp.Message = limit.TooLongMessage()
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
