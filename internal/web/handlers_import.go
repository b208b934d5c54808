package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/giftcrm/internal/core"
)

const (
	// multipartMemory is how much of an upload ParseMultipartForm keeps in
	// memory before spilling to a temp file.
	multipartMemory = 8 << 20

	// multipartSlack covers the form framing around the file itself.
	multipartSlack = 64 << 10

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var errNoFile = errors.New("no file provided")

// handleImport parses an uploaded workbook and returns the normalized
// records without saving them.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	file, name, status, err := s.uploadedFile(w, r)
	if err != nil {
		respondError(w, r, err, status)
		return
	}
	defer file.Close()

	res := s.service.Import(withClient(r), name, file, kind)
	writeJSON(w, importStatus(res), res)
}

// handleImportMerge parses an uploaded workbook and merges it into the
// collection; ?dryRun=true skips the save.
func (s *Server) handleImportMerge(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dryRun"))

	file, name, status, err := s.uploadedFile(w, r)
	if err != nil {
		respondError(w, r, err, status)
		return
	}
	defer file.Close()

	report, err := s.service.ImportAndMerge(withClient(r), name, file, kind, dryRun)
	switch {
	case errors.Is(err, core.ErrImportFailed):
		writeJSON(w, importStatus(report.Import), report)
	case err != nil:
		respondError(w, r, err, 0)
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

// handleExport streams the GLS shipment workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	buf, n, err := s.service.ExportGLS(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	filename := fmt.Sprintf("spedizioni-gls-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Record-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// uploadedFile extracts the "file" part of a multipart upload. On failure
// it also returns the status to answer with.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, int, error) {
	limit := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", http.StatusRequestEntityTooLarge, fmt.Errorf("file too large: exceeds %d bytes", limit)
		}
		return nil, "", http.StatusBadRequest, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", http.StatusBadRequest, fmt.Errorf("%w: %v", errNoFile, err)
	}
	return file, header.Filename, 0, nil
}

// importStatus maps an import outcome onto a status code. Parse failures
// are the client's file, so 422; a full limiter is 503.
func importStatus(res core.ImportResult) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Code {
	case "IMP001":
		return http.StatusServiceUnavailable
	case "FILE001":
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusUnprocessableEntity
}
