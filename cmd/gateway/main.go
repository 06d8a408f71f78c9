package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"doc-assistant/internal/app"
	"doc-assistant/internal/extract"
	"doc-assistant/internal/httputil"
	"doc-assistant/internal/ingest"
	"doc-assistant/internal/qa"
	"doc-assistant/internal/queue"
	"doc-assistant/internal/store"
)

const sessionHeader = "X-Session-ID"

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Store.Close()
	defer deps.Cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// The inline queue runs ingestion inside the upload request, so register before serving.
	if inline, ok := deps.Queue.(*queue.InlineQueue); ok {
		handler := deps.Ingestor().Handle
		inline.Register(queue.TaskTypeParse, handler)
		g.Go(func() error {
			return inline.Worker(ctx, queue.TaskTypeParse, handler)
		})
	}
	if deps.Corpus != nil {
		g.Go(func() error {
			deps.Corpus.Load()
			return nil
		})
	}
	g.Go(func() error {
		return httputil.Serve(ctx, deps.Log, fmt.Sprintf(":%d", deps.Config.Port), newRouter(deps), "gateway")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("gateway stopped", "err", err)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/documents/upload", uploadHandler(deps))
	r.Get("/api/sessions/{id}/documents", listDocumentsHandler(deps))
	r.Delete("/api/sessions/{id}", deleteSessionHandler(deps))
	r.Post("/api/question/check", qa.CheckHandler(deps.Limit(), deps.Log))
	if deps.Config.QueryServiceURL == "" {
		r.Post("/api/query", qa.Handler(deps.QA(), deps.Log))
		r.Get("/api/knowledge", qa.KnowledgeHandler(deps.Corpus))
	} else {
		r.Post("/api/query", proxyHandler(deps, "/api/query"))
		r.Get("/api/knowledge", proxyHandler(deps, "/api/knowledge"))
	}
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

type uploadedDocument struct {
	ID       uuid.UUID            `json:"id"`
	Filename string               `json:"filename"`
	Status   store.DocumentStatus `json:"status"`
}

type uploadResponse struct {
	SessionID string             `json:"session_id"`
	Documents []uploadedDocument `json:"documents"`
	Warnings  []string           `json:"warnings"`
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			httputil.FailJSON(deps.Log, w, http.StatusBadRequest, "multipart form required", err, nil)
			return
		}
		defer r.MultipartForm.RemoveAll()

		sessionID := strings.TrimSpace(r.FormValue("session_id"))
		if sessionID == "" {
			sessionID = strings.TrimSpace(r.Header.Get(sessionHeader))
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
		} else if err := httputil.Validator.Var(sessionID, "uuid"); err != nil {
			httputil.FailJSON(deps.Log, w, http.StatusBadRequest, "session_id must be a UUID", err, nil)
			return
		}

		files := append(r.MultipartForm.File["files"], r.MultipartForm.File["file"]...)
		if len(files) == 0 {
			httputil.FailJSON(deps.Log, w, http.StatusBadRequest, "at least one file is required", nil, nil)
			return
		}

		resp := uploadResponse{SessionID: sessionID, Documents: []uploadedDocument{}, Warnings: []string{}}
		for _, fh := range files {
			text, warning := readUpload(fh, maxFileSize)
			if warning != "" {
				deps.Log.Warn("upload skipped", "filename", fh.Filename, "reason", warning)
				resp.Warnings = append(resp.Warnings, warning)
				continue
			}

			doc, err := deps.Store.CreateDocument(ctx, sessionID, fh.Filename)
			if err != nil {
				httputil.FailJSON(deps.Log, w, http.StatusInternalServerError, "failed to persist document", err, nil)
				return
			}
			status, err := enqueueParse(ctx, deps, doc, text)
			if err != nil {
				resp.Warnings = append(resp.Warnings, fmt.Sprintf("Could not process %s: %v", fh.Filename, err))
			}
			resp.Documents = append(resp.Documents, uploadedDocument{ID: doc.ID, Filename: doc.Filename, Status: status})
		}

		httputil.WriteJSON(w, http.StatusAccepted, resp)
	}
}

// readUpload extracts a file's text, or returns a warning naming the file.
func readUpload(fh *multipart.FileHeader, maxFileSize int64) (string, string) {
	if fh.Size > maxFileSize {
		return "", fmt.Sprintf("%s is too large (max %d bytes)", fh.Filename, maxFileSize)
	}
	kind := extract.DetectKind(fh.Header.Get("Content-Type"), fh.Filename)
	if kind == extract.Unsupported {
		return "", "Unsupported or empty file: " + fh.Filename
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Sprintf("Could not read %s: %v", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return "", fmt.Sprintf("Could not read %s: %v", fh.Filename, err)
	}
	text, err := extract.Text(kind, data)
	if err != nil {
		return "", fmt.Sprintf("Could not read %s: %v", fh.Filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "Unsupported or empty file: " + fh.Filename
	}
	return text, ""
}

// enqueueParse hands the text to the parser and reports the document's status afterwards.
// With the inline queue the document is already ready (or empty) here.
func enqueueParse(ctx context.Context, deps app.Deps, doc store.Document, text string) (store.DocumentStatus, error) {
	log := deps.Log.With("document_id", doc.ID)
	task, err := ingest.NewTask(ingest.ParsePayload{
		DocumentID: doc.ID,
		SessionID:  doc.SessionID,
		Filename:   doc.Filename,
		Text:       text,
	})
	if err == nil {
		err = queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond)
	}
	if err != nil {
		log.Error("failed to enqueue document", "err", err)
		if upErr := deps.Store.UpdateDocumentStatus(ctx, doc.ID, store.StatusFailed); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
		return store.StatusFailed, err
	}
	current, err := deps.Store.GetDocument(ctx, doc.ID)
	if err != nil {
		log.Warn("failed to refresh document status", "err", err)
		return doc.Status, nil
	}
	return current.Status, nil
}

func listDocumentsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")
		if err := httputil.Validator.Var(sessionID, "required,uuid"); err != nil {
			httputil.FailJSON(deps.Log, w, http.StatusBadRequest, "invalid session id", err, nil)
			return
		}
		docs, err := deps.Store.ListDocuments(r.Context(), sessionID)
		if err != nil {
			httputil.FailJSON(deps.Log, w, http.StatusInternalServerError, "failed to list documents", err, nil)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"session_id": sessionID,
			"documents":  docs,
		})
	}
}

func deleteSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")
		if err := httputil.Validator.Var(sessionID, "required,uuid"); err != nil {
			httputil.FailJSON(deps.Log, w, http.StatusBadRequest, "invalid session id", err, nil)
			return
		}
		if err := deps.Store.DeleteSession(r.Context(), sessionID); err != nil {
			httputil.FailJSON(deps.Log, w, http.StatusInternalServerError, "failed to delete session", err, nil)
			return
		}
		if err := deps.Cache.InvalidateSession(r.Context(), sessionID); err != nil {
			deps.Log.Warn("failed to invalidate session cache", "session_id", sessionID, "err", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func proxyHandler(deps app.Deps, path string) http.HandlerFunc {
	target := strings.TrimRight(deps.Config.QueryServiceURL, "/") + path
	client := &http.Client{Timeout: 60 * time.Second}

	return func(w http.ResponseWriter, r *http.Request) {
		req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
		if err != nil {
			httputil.FailJSON(deps.Log, w, http.StatusInternalServerError, "failed to create request", err, nil)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			httputil.FailJSON(deps.Log, w, status, "query service unavailable", err, nil)
			return
		}
		defer resp.Body.Close()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			deps.Log.Error("failed to copy response", "err", err)
		}
	}
}
