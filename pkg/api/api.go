package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"wordmask/pkg/audit"
	"wordmask/pkg/censor"
	"wordmask/pkg/dict"
	"wordmask/pkg/models"
	"wordmask/pkg/storage"
)

var ErrNoCensor = errors.New("censor is not provided")

type API struct {
	ServiceName string

	r   *mux.Router
	c   *censor.Censor
	kw  *kafka.Writer
	rl  *dict.Reloader
	db  storage.Storage
	aud *audit.Auditor
}

type Option func(*API)

// WithReloader enables POST /dictionary/reload.
func WithReloader(rl *dict.Reloader) Option {
	return func(api *API) {
		api.rl = rl
	}
}

// WithStorage enables the /dictionary/words endpoints.
func WithStorage(db storage.Storage) Option {
	return func(api *API) {
		api.db = db
	}
}

// WithAuditor sends every detection to aud.
func WithAuditor(aud *audit.Auditor) Option {
	return func(api *API) {
		api.aud = aud
	}
}

func New(name string, c *censor.Censor, kafkaWriter *kafka.Writer, opts ...Option) (*API, error) {
	if c == nil {
		return nil, ErrNoCensor
	}

	api := API{
		ServiceName: name,
		r:           mux.NewRouter(),
		c:           c,
		kw:          kafkaWriter,
	}
	for _, opt := range opts {
		opt(&api)
	}
	api.endpoints()

	return &api, nil
}

func (api *API) Router() *mux.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.headerMiddleware)

	api.r.HandleFunc("/check", api.checkComment).Methods(http.MethodPost)
	api.r.HandleFunc("/mask", api.maskComment).Methods(http.MethodPost)

	api.r.HandleFunc("/dictionary", api.dictionaryInfo).Methods(http.MethodGet)
	api.r.HandleFunc("/dictionary/reload", api.reloadDictionary).Methods(http.MethodPost)

	if api.db != nil {
		api.r.HandleFunc("/dictionary/words", api.listWords).Methods(http.MethodGet)
		api.r.HandleFunc("/dictionary/words", api.addWords).Methods(http.MethodPost)
		api.r.HandleFunc("/dictionary/words/{word}", api.deleteWord).Methods(http.MethodDelete)
	}

	if api.kw != nil {
		api.r.Use(api.loggingMiddleware(api.kw))
	}
}

func (api *API) checkComment(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())
	sID := shorten(reqID)

	var comment models.Comment
	err := json.NewDecoder(r.Body).Decode(&comment)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Errorf("[checkComment][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	matches := api.c.Matches(comment.Text)
	if len(matches) == 0 {
		writeJSON(w, http.StatusOK, CheckResponse{Allowed: true}, "checkComment", sID)
		return
	}

	texts := matchTexts(matches)
	api.audit(reqID, "check", texts, "")
	log.Debugf("[checkComment][%s] comment rejected, %d matches", sID, len(matches))

	writeJSON(w, http.StatusUnprocessableEntity, CheckResponse{Allowed: false, Matches: texts}, "checkComment", sID)
}

func (api *API) maskComment(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())
	sID := shorten(reqID)

	var comment models.Comment
	err := json.NewDecoder(r.Body).Decode(&comment)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Errorf("[maskComment][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	masked, matches := api.c.Redact(comment.Text)
	if len(matches) > 0 {
		comment.Text = masked
		comment.Censored = true
		api.audit(reqID, "mask", matchTexts(matches), comment.Text)
	}

	writeJSON(w, http.StatusOK, comment, "maskComment", sID)
}

func (api *API) dictionaryInfo(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	writeJSON(w, http.StatusOK, api.info(), "dictionaryInfo", sID)
}

func (api *API) reloadDictionary(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	if api.rl == nil {
		http.Error(w, "Dictionary source is not configured", http.StatusServiceUnavailable)
		log.Debugf("[reloadDictionary][%s] reload requested without a source", sID)
		return
	}

	n, err := api.rl.Reload(r.Context())
	if err != nil {
		http.Error(w, "Dictionary source unavailable", http.StatusBadGateway)
		log.Errorf("[reloadDictionary][%s] %v, keeping %d phrases", sID, err, n)
		return
	}
	log.Infof("[reloadDictionary][%s] dictionary reloaded: %d phrases", sID, n)

	writeJSON(w, http.StatusOK, api.info(), "reloadDictionary", sID)
}

func (api *API) listWords(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	words, err := api.db.Words(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[listWords][%s] Words() returned error: %v", sID, err)
		return
	}
	if words == nil {
		words = []string{}
	}

	writeJSON(w, http.StatusOK, WordsRequest{Words: words}, "listWords", sID)
}

func (api *API) addWords(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	var req WordsRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Debugf("[addWords][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	err = api.db.AddWords(r.Context(), req.Words...)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyWord) {
			http.Error(w, "No words provided", http.StatusBadRequest)
			log.Debugf("[addWords][%s] request without words", sID)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[addWords][%s] AddWords() returned error: %v", sID, err)
		return
	}

	api.refresh(r.Context(), "addWords", sID)
	writeJSON(w, http.StatusCreated, api.info(), "addWords", sID)
}

func (api *API) deleteWord(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	word := mux.Vars(r)["word"]

	err := api.db.DeleteWord(r.Context(), word)
	if err != nil {
		if errors.Is(err, storage.ErrWordNotFound) {
			http.Error(w, "Word not found", http.StatusNotFound)
			log.Debugf("[deleteWord][%s] failed to delete word: %v", sID, err)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[deleteWord][%s] DeleteWord() returned error: %v", sID, err)
		return
	}

	api.refresh(r.Context(), "deleteWord", sID)
	w.WriteHeader(http.StatusNoContent)
}

// refresh republishes the dictionary after the storage was modified.
func (api *API) refresh(ctx context.Context, handler, sID string) {
	if api.rl != nil {
		if _, err := api.rl.Reload(ctx); err != nil {
			log.Errorf("[%s][%s] dictionary reload failed: %v", handler, sID, err)
		}
		return
	}

	words, err := api.db.Words(ctx)
	if err != nil {
		log.Errorf("[%s][%s] dictionary reload failed: %v", handler, sID, err)
		return
	}
	api.c.Load(words)
}

func (api *API) info() DictionaryInfo {
	info := DictionaryInfo{Words: api.c.Dictionary().Len()}
	if api.rl != nil {
		if t := api.rl.LoadedAt(); !t.IsZero() {
			info.LoadedAt = &t
		}
	}
	return info
}

func (api *API) audit(reqID, action string, matches []string, masked string) {
	if api.aud == nil {
		return
	}
	api.aud.Submit(audit.Event{
		Timestamp: time.Now().UTC(),
		RequestID: reqID,
		Service:   api.ServiceName,
		Action:    action,
		Matches:   matches,
		Masked:    masked,
	})
}

func matchTexts(matches []censor.Match) []string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return texts
}

func writeJSON(w http.ResponseWriter, status int, v any, handler, sID string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("[%s][%s] failed to encode response data: %v", handler, sID, err)
		return
	}
	log.Debugf("[%s][%s] response sent", handler, sID)
}

// GetRequestID extracts the request ID from the context.
// It returns the request ID as a string if present, otherwise returns an empty string.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// shorten truncates a string to 6 characters if it is longer than 6, appends '...' at the end,
// otherwise it returns the string unchanged.
func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
