package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ipex/docregistro/internal/metrics"
	"github.com/ipex/docregistro/internal/middleware"
	"github.com/ipex/docregistro/internal/services/archive"
	"github.com/ipex/docregistro/internal/services/export"
	"github.com/ipex/docregistro/internal/services/records"
	"go.uber.org/zap"
)

const (
	contentTypeCSV = "text/csv; charset=utf-8"
	contentTypePDF = "application/pdf"
	archiveTimeout = 30 * time.Second
)

// exportCSV downloads the active or deleted list as CSV.
// With ?format=json the text is wrapped as {content}.
func (r *Router) exportCSV(w http.ResponseWriter, req *http.Request) {
	set, err := export.ParseSet(req.URL.Query().Get("set"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := r.records.List(req.Context(), set)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}

	now := r.now()
	data := export.CSV(records.DisplayAll(recs), set)
	filename := export.Filename(now, "csv")
	metrics.Exports.WithLabelValues("csv", string(set)).Inc()
	r.archiveExport(req, filename, contentTypeCSV, data, now)

	if req.URL.Query().Get("format") == "json" {
		respondJSON(w, http.StatusOK, map[string]string{"content": string(data)})
		return
	}
	sendFile(w, contentTypeCSV, filename, data)
}

// exportPDF downloads the active or deleted list as a PDF table
func (r *Router) exportPDF(w http.ResponseWriter, req *http.Request) {
	set, err := export.ParseSet(req.URL.Query().Get("set"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := r.records.List(req.Context(), set)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}

	now := r.now()
	data, err := export.PDF(records.DisplayAll(recs), set, now)
	if err != nil {
		r.logger.Error("Failed to render PDF", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	filename := export.Filename(now, "pdf")
	metrics.Exports.WithLabelValues("pdf", string(set)).Inc()
	r.archiveExport(req, filename, contentTypePDF, data, now)

	sendFile(w, contentTypePDF, filename, data)
}

// receiptPDF downloads the summary of one record
func (r *Router) receiptPDF(w http.ResponseWriter, req *http.Request) {
	id, ok := recordID(w, req)
	if !ok {
		return
	}
	rec, err := r.records.Get(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}

	url := ""
	if r.cfg.PublicURL != "" {
		url = r.cfg.PublicURL + "/api/records/" + strconv.FormatUint(uint64(id), 10)
	}
	data, err := export.Receipt(records.Display(*rec), url)
	if err != nil {
		r.logger.Error("Failed to render receipt", zap.Uint("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	metrics.Exports.WithLabelValues("receipt", string(rec.Status())).Inc()

	sendFile(w, contentTypePDF, fmt.Sprintf("registro_%d.pdf", id), data)
}

// archiveExport keeps a copy of the export; failures are only logged
func (r *Router) archiveExport(req *http.Request, filename, contentType string, data []byte, now time.Time) {
	if _, ok := r.archive.(archive.Nop); ok {
		return
	}

	key := archive.Key(filename, now)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), archiveTimeout)
	defer cancel()

	if err := r.archive.Store(ctx, key, contentType, data); err != nil {
		r.logger.Warn("Failed to archive export", zap.String("key", key), zap.Error(err))
		return
	}
	r.logger.Info("Export archived",
		zap.String("key", key), zap.String("user_id", middleware.UserID(req.Context())))
}

func sendFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
