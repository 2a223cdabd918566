package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ipex/docregistro/internal/middleware"
	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/records"
	"go.uber.org/zap"
)

// recordResponse is a stored record together with its resolved display values
type recordResponse struct {
	models.DocumentRecord
	Status  models.RecordStatus `json:"status"`
	Display records.DisplayRow  `json:"display"`
}

func newRecordResponse(rec models.DocumentRecord) recordResponse {
	return recordResponse{
		DocumentRecord: rec,
		Status:         rec.Status(),
		Display:        records.Display(rec),
	}
}

func newRecordList(recs []models.DocumentRecord) []recordResponse {
	out := make([]recordResponse, len(recs))
	for i, rec := range recs {
		out[i] = newRecordResponse(rec)
	}
	return out
}

// listOptions returns the option lists of the register form
func (r *Router) listOptions(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"options":     r.records.Catalog(),
		"otherOption": models.OtherOption,
	})
}

// createRecord validates and stores a submission
func (r *Router) createRecord(w http.ResponseWriter, req *http.Request) {
	var sub records.Submission
	if err := json.NewDecoder(req.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	rec, err := r.records.Create(req.Context(), middleware.UserID(req.Context()), sub)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      rec.ID,
		"record":  newRecordResponse(*rec),
	})
}

// listRecords returns the active records
func (r *Router) listRecords(w http.ResponseWriter, req *http.Request) {
	recs, err := r.records.ListActive(req.Context())
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newRecordList(recs))
}

// listDeletedRecords returns the soft-deleted records
func (r *Router) listDeletedRecords(w http.ResponseWriter, req *http.Request) {
	recs, err := r.records.ListDeleted(req.Context())
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newRecordList(recs))
}

// getRecord returns one record in either state
func (r *Router) getRecord(w http.ResponseWriter, req *http.Request) {
	id, ok := recordID(w, req)
	if !ok {
		return
	}
	rec, err := r.records.Get(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newRecordResponse(*rec))
}

// softDeleteRecord moves a record to the deleted list
func (r *Router) softDeleteRecord(w http.ResponseWriter, req *http.Request) {
	r.transition(w, req, r.records.SoftDelete)
}

// restoreRecord moves a record back to the active list
func (r *Router) restoreRecord(w http.ResponseWriter, req *http.Request) {
	r.transition(w, req, r.records.Restore)
}

// permanentlyDeleteRecord removes a deleted record
func (r *Router) permanentlyDeleteRecord(w http.ResponseWriter, req *http.Request) {
	r.transition(w, req, r.records.PermanentlyDelete)
}

// emailRecord notifies the director about a record
func (r *Router) emailRecord(w http.ResponseWriter, req *http.Request) {
	id, ok := recordID(w, req)
	if !ok {
		return
	}
	msg, err := r.records.SendEmail(req.Context(), middleware.UserID(req.Context()), id)
	if err != nil {
		var serr *records.StoreError
		if !records.IsClientError(err) && !errors.As(err, &serr) {
			r.logger.Error("Failed to send email", zap.Uint("id", id), zap.Error(err))
			respondError(w, http.StatusBadGateway, "Failed to send email")
			return
		}
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"recipient": msg.To,
	})
}

func (r *Router) transition(w http.ResponseWriter, req *http.Request, op func(ctx context.Context, actorID string, id uint) error) {
	id, ok := recordID(w, req)
	if !ok {
		return
	}
	if err := op(req.Context(), middleware.UserID(req.Context()), id); err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// respondServiceError maps record service errors to HTTP responses
func (r *Router) respondServiceError(w http.ResponseWriter, err error) {
	var verrs records.ValidationErrors
	var verr *records.ValidationError
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  verrs[0].Message,
			"field":  verrs[0].Field,
			"fields": verrs,
		})
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  verr.Message,
			"field":  verr.Field,
			"fields": []*records.ValidationError{verr},
		})
	case errors.Is(err, records.ErrNotFound):
		respondError(w, http.StatusNotFound, "Record not found")
	case errors.Is(err, records.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, records.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "Authentication required")
	default:
		r.logger.Error("Record store failure", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Database error")
	}
}

// recordID parses the {id} route variable
func recordID(w http.ResponseWriter, req *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil || id == 0 {
		respondError(w, http.StatusBadRequest, "Invalid record id")
		return 0, false
	}
	return uint(id), true
}
