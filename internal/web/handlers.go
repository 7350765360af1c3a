package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/datasheet/internal/core"
	"github.com/JonMunkholm/datasheet/internal/logging"
	"github.com/JonMunkholm/datasheet/internal/web/views"
)

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 32 << 20

// upload is a received datasheet written to a private temp directory.
type upload struct {
	Name string // client file name
	Path string // spooled copy; its base name matches Name
	dir  string
}

func (u *upload) Remove() {
	if err := os.RemoveAll(u.dir); err != nil {
		slog.Warn("remove upload", "dir", u.dir, "error", err)
	}
}

// receive reads the multipart form and spools its "file" part. Parsers
// derive table names from the file stem, so the spooled copy keeps the
// client's base name.
func (s *Server) receive(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, s.cfg.Import.MaxFileSize)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, errNoFile
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	return spool(file, header)
}

func spool(src multipart.File, header *multipart.FileHeader) (*upload, error) {
	name := filepath.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}

	dir, err := os.MkdirTemp("", "datasheet-")
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	u := &upload{Name: name, Path: filepath.Join(dir, name), dir: dir}

	dst, err := os.Create(u.Path)
	if err != nil {
		u.Remove()
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		u.Remove()
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		u.Remove()
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	return u, nil
}

// importOptions reads the import form fields over the configured defaults.
func (s *Server) importOptions(r *http.Request) (core.ImportOptions, error) {
	opts := core.DefaultImportOptions()
	opts.IfExists = core.IfExists(s.cfg.Import.IfExists)

	opts.TableName = strings.TrimSpace(r.FormValue("table"))
	opts.InventoryType = strings.TrimSpace(r.FormValue("type"))
	if v := r.FormValue("if_exists"); v != "" {
		opts.IfExists = core.IfExists(v)
	}

	bools := []struct {
		field string
		dst   *bool
	}{
		{"auto_fix", &opts.AutoFix},
		{"remove_bad", &opts.RemoveBadRows},
	}
	for _, b := range bools {
		if err := formBool(r, b.field, b.dst); err != nil {
			return opts, err
		}
	}

	commit := false
	if err := formBool(r, "commit", &commit); err != nil {
		return opts, err
	}
	opts.DryRun = !commit

	return opts, nil
}

// formBool overwrites *dst when field is present.
func formBool(r *http.Request, field string, dst *bool) error {
	v := r.FormValue(field)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a boolean", core.ErrInvalidOptions, field, v)
	}
	*dst = b
	return nil
}

// schemaWarnings checks each preview against the inventory type named by
// the "type" field, if any.
func schemaWarnings(r *http.Request, previews []core.TablePreview) (map[string][]string, error) {
	key := strings.TrimSpace(r.FormValue("type"))
	if key == "" {
		return nil, nil
	}
	schema, ok := core.LookupSchema(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownType, key)
	}
	out := make(map[string][]string, len(previews))
	for _, p := range previews {
		out[p.FileTableName] = core.CheckSchema(p.Sanitized, schema)
	}
	return out, nil
}

// uploadContext tags the request's logs with the client file name, since
// the pipeline only sees the spooled path.
func uploadContext(r *http.Request, u *upload) context.Context {
	return logging.NewContext(r.Context(), slog.Default().With("upload", u.Name))
}

// withSlot runs fn while holding an import slot, bounded by the import timeout.
func (s *Server) withSlot(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := s.imports.Acquire(ctx); err != nil {
		return err
	}
	defer s.imports.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Import.Timeout)
	defer cancel()
	return fn(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := views.Page("Datasheet import", views.UploadPage(s.service.Supported(), core.Schemas()))
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render index", "error", err)
	}
}

// previewUpload is shared by the HTML and JSON preview endpoints.
func (s *Server) previewUpload(w http.ResponseWriter, r *http.Request) (*upload, []core.TablePreview, map[string][]string, error) {
	u, err := s.receive(w, r)
	if err != nil {
		return nil, nil, nil, err
	}
	defer u.Remove()

	var previews []core.TablePreview
	err = s.withSlot(uploadContext(r, u), func(ctx context.Context) error {
		var err error
		previews, err = s.service.PreviewAndAnalyze(ctx, u.Path)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}

	warnings, err := schemaWarnings(r, previews)
	if err != nil {
		return nil, nil, nil, err
	}
	return u, previews, warnings, nil
}

func (s *Server) handlePreviewPage(w http.ResponseWriter, r *http.Request) {
	u, previews, warnings, err := s.previewUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := views.Page("Preview "+u.Name, views.PreviewPage(u.Name, previews, warnings))
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render preview", "error", err)
	}
}

// PreviewResponse is the body of POST /api/preview.
type PreviewResponse struct {
	File           string              `json:"file"`
	Tables         []core.TablePreview `json:"tables"`
	SchemaWarnings map[string][]string `json:"schema_warnings,omitempty"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	u, previews, warnings, err := s.previewUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, PreviewResponse{File: u.Name, Tables: previews, SchemaWarnings: warnings})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	u, err := s.receive(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer u.Remove()

	opts, err := s.importOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var report *core.ImportReport
	err = s.withSlot(uploadContext(r, u), func(ctx context.Context) error {
		var err error
		report, err = s.service.ProcessAndImport(ctx, u.Path, opts)
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	report.File = u.Name
	render.JSON(w, r, report)
}

// TypeInfo describes one catalog inventory type.
type TypeInfo struct {
	Key         string      `json:"key"`
	Description string      `json:"description"`
	Required    []string    `json:"required"`
	Fields      []FieldInfo `json:"fields"`
}

// FieldInfo describes one field of an inventory type.
type FieldInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
}

func typeInfos() []TypeInfo {
	schemas := core.Schemas()
	out := make([]TypeInfo, 0, len(schemas))
	for _, sc := range schemas {
		info := TypeInfo{Key: sc.Key, Description: sc.Description, Required: sc.Required()}
		for _, f := range sc.Fields {
			info.Fields = append(info.Fields, FieldInfo{
				Name:     f.Name,
				Type:     f.Type.String(),
				Required: f.Required,
				Default:  f.Default,
			})
		}
		out = append(out, info)
	}
	return out
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, typeInfos())
}
