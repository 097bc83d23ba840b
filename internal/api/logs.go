package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"uav-logchat/flightdesk/internal/common"
	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/dataflash"
	"uav-logchat/flightdesk/internal/flightlog"
	"uav-logchat/flightdesk/internal/logging"
	"uav-logchat/flightdesk/internal/services"
)

const (
	// multipart parts above this size are spooled to disk
	multipartMemory = 32 << 20
	// room for boundaries and part headers on top of the file limit
	multipartOverhead = 1 << 20
)

// UploadLogHandler handles POST /api/upload
//
// Accepts a multipart form with a "file" part holding a DataFlash .bin log and
// responds with the new log id and its flight summary.
func UploadLogHandler(logs LogService, maxSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if isBodyTooLarge(err) {
				common.RespondError(w, initTime, nil, constants.MsgFileTooLarge, http.StatusRequestEntityTooLarge)
				return
			}
			common.RespondError(w, initTime, nil, constants.MsgMissingFile, http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			common.RespondError(w, initTime, nil, constants.MsgMissingFile, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxSize {
			common.RespondError(w, initTime, nil, constants.MsgFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}

		resp, err := logs.UploadLog(r.Context(), header.Filename, file)
		if err != nil {
			respondUploadError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, constants.MsgLogParsed, resp)
	}
}

func respondUploadError(w http.ResponseWriter, initTime time.Time, err error) {
	var openErr *dataflash.StreamOpenError
	var timeoutErr *flightlog.ParseTimeoutError

	switch {
	case errors.Is(err, services.ErrUnsupportedFile):
		common.RespondError(w, initTime, nil, constants.MsgUnsupportedFile, http.StatusBadRequest)
	case errors.As(err, &openErr):
		common.RespondError(w, initTime, fmt.Errorf("%s: %v", constants.MsgInvalidLog, openErr.Err), "", http.StatusUnprocessableEntity)
	case errors.As(err, &timeoutErr):
		common.RespondError(w, initTime, nil, constants.MsgParseLimit, http.StatusUnprocessableEntity)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		common.RespondError(w, initTime, nil, constants.MsgServerBusy, http.StatusServiceUnavailable)
	default:
		logging.Error("Log upload failed", "error", err.Error())
		common.RespondError(w, initTime, nil, constants.MsgInternalError, http.StatusInternalServerError)
	}
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	// some multipart read paths drop the wrapped error
	return strings.Contains(err.Error(), "request body too large")
}

// GetLogHandler handles GET /api/logs/{log_id}
func GetLogHandler(logs LogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		summary, err := logs.GetSummary(chi.URLParam(r, "log_id"))
		if err != nil {
			common.RespondError(w, initTime, nil, constants.MsgLogNotFound, http.StatusNotFound)
			return
		}

		common.RespondSuccess(w, initTime, constants.MsgLogFound, summary)
	}
}
