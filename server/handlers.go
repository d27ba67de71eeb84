package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/becomeliminal/memory-vault/core"
	"github.com/becomeliminal/memory-vault/log"
)

type healthResponse struct {
	Status   string `json:"status"`
	Memories int    `json:"memories"`
}

type uploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type uploadResponse struct {
	Ingested int             `json:"ingested"`
	Failed   int             `json:"failed"`
	Memories []core.Record   `json:"memories"`
	Errors   []uploadFailure `json:"errors"`
}

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	count, err := s.store.Count(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Memories: count})
}

// handleUpload ingests multipart "files" with optional parallel "source_types" and
// "descriptions" values. Individual file failures are reported, never fatal.
func (s *Server) handleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid multipart form: %v", err)})
	}
	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "no files uploaded"})
	}
	types := form.Value["source_types"]
	descriptions := form.Value["descriptions"]

	resp := uploadResponse{Memories: []core.Record{}, Errors: []uploadFailure{}}
	var uploads []core.Upload

	for i, fh := range files {
		upload, err := readUpload(fh, valueAt(types, i), valueAt(descriptions, i))
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, uploadFailure{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		uploads = append(uploads, upload)
	}

	ctx, cancel := s.modelContext(c.Request().Context())
	defer cancel()

	var records []core.Record
	for _, o := range s.ingester.Process(ctx, uploads) {
		if !o.OK() {
			resp.Failed++
			resp.Errors = append(resp.Errors, uploadFailure{Filename: o.Upload.Filename, Error: o.Err.Error()})
			continue
		}
		records = append(records, o.Record)
	}

	if err := s.store.AddBatch(ctx, records); err != nil {
		log.FromCtx(ctx).Error().Err(err).Int("records", len(records)).Msg("store batch failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	resp.Ingested = len(records)
	if records != nil {
		resp.Memories = records
	}
	return c.JSON(http.StatusOK, resp)
}

func readUpload(fh *multipart.FileHeader, sourceType, description string) (core.Upload, error) {
	var (
		st  core.SourceType
		err error
	)
	if strings.TrimSpace(sourceType) != "" {
		st, err = core.ParseSourceType(sourceType)
	} else {
		st, err = core.DetectSourceType(fh.Filename)
	}
	if err != nil {
		return core.Upload{}, err
	}

	f, err := fh.Open()
	if err != nil {
		return core.Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return core.Upload{}, fmt.Errorf("read upload: %w", err)
	}

	return core.Upload{
		Filename:    fh.Filename,
		Data:        data,
		SourceType:  st,
		Description: strings.TrimSpace(description),
	}, nil
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func (s *Server) handleQuery(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	ans, status, err := s.answer(c.Request().Context(), req)
	if err != nil {
		return c.JSON(status, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, ans)
}

func (s *Server) handleMedia(c echo.Context) error {
	path, err := s.media.Path(c.Param("name"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	return c.File(path)
}

var errEmptyQuery = errors.New("query must not be empty")
