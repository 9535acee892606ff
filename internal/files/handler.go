package files

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stashdrive/service/internal/response"
	"github.com/stashdrive/service/internal/storage"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// is spooled to temporary files by net/http.
const multipartMemory = 32 << 20

// Handler holds HTTP handlers for the folder/file endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new files Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the endpoints on r (expected under /api).
func (h *Handler) Routes(r chi.Router) {
	r.Post("/create-folder", h.CreateFolder)
	r.Post("/upload-file", h.UploadFile)
	r.Post("/upload-folder", h.UploadFolder)
	r.Get("/files-and-folders", h.FilesAndFolders)
	r.Delete("/delete-item", h.DeleteItem)
	r.Post("/move-file", h.MoveFile)
	r.Get("/search", h.Search)
}

type createFolderRequest struct {
	FolderName string `json:"folderName" example:"reports"`
}

type createFolderData struct {
	Message    string `json:"message"    example:"Folder created successfully"`
	FolderPath string `json:"folderPath" example:"reports/"`
}

type uploadFileData struct {
	Message string `json:"message" example:"File uploaded successfully"`
	FileURL string `json:"fileUrl" example:"https://storage.googleapis.com/stashdrive/report.pdf"`
}

type uploadFolderData struct {
	Message   string `json:"message"   example:"Folder uploaded successfully"`
	FolderURL string `json:"folderUrl" example:"https://storage.googleapis.com/stashdrive/mix"`
}

type deleteItemRequest struct {
	Path string `json:"path" example:"reports/2024"`
}

type messageData struct {
	Message string `json:"message" example:"File deleted successfully"`
}

type moveFileRequest struct {
	FileName     string `json:"fileName"     example:"a/old.txt"`
	TargetFolder string `json:"targetFolder" example:"b"`
}

type moveFileData struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"File moved successfully"`
}

// CreateFolder godoc
//
//	@Summary		Create folder
//	@Description	Writes a zero-length folder marker "<folderName>/". Creating an existing folder succeeds.
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createFolderRequest	true	"Folder name"
//	@Success		200		{object}	createFolderData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/create-folder [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	folderPath, err := h.svc.CreateFolder(r.Context(), req.FolderName)
	if err != nil {
		h.fail(w, r, err, "Failed to create folder", false)
		return
	}

	response.OK(w, createFolderData{Message: "Folder created successfully", FolderPath: folderPath})
}

// UploadFile godoc
//
//	@Summary		Upload file
//	@Description	Streams the multipart field "file" to an object keyed by its file name. Other parts are skipped.
//	@Tags			files
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		200		{object}	uploadFileData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		413		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload-file [post]
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, ErrNoFile.Message)
		return
	}

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			response.BadRequest(w, ErrNoFile.Message)
			return
		}
		if err != nil {
			h.rejectBody(w, err, ErrNoFile.Message)
			return
		}
		if p.FormName() != "file" || p.FileName() == "" {
			_ = p.Close()
			continue
		}

		fileURL, err := h.svc.UploadFile(r.Context(), File{
			Name:        partFileName(p.Header, p.FileName()),
			Content:     p,
			Size:        -1,
			ContentType: p.Header.Get("Content-Type"),
		})
		_ = p.Close()
		if err != nil {
			h.fail(w, r, err, "Failed to upload file", false)
			return
		}

		response.OK(w, uploadFileData{Message: "File uploaded successfully", FileURL: fileURL})
		return
	}
}

// UploadFolder godoc
//
//	@Summary		Upload folder
//	@Description	Writes every multipart "files" (or "files[]") part under "<folderName>/". Writes run concurrently; the request fails if any write fails, without rolling back the others.
//	@Tags			files
//	@Accept			mpfd
//	@Produce		json
//	@Param			files		formData	file	true	"Files to upload"
//	@Param			folderName	formData	string	true	"Destination folder"
//	@Success		200			{object}	uploadFolderData
//	@Failure		400			{object}	response.ErrorBody
//	@Failure		413			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/upload-folder [post]
func (h *Handler) UploadFolder(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r, ErrNoFiles.Message) {
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := append(r.MultipartForm.File["files"], r.MultipartForm.File["files[]"]...)
	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.fail(w, r, err, "Failed to upload folder", false)
			closeAll(files)
			return
		}
		files = append(files, File{
			Name:        partFileName(fh.Header, fh.Filename),
			Content:     f,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	defer closeAll(files)

	folderURL, err := h.svc.UploadFolder(r.Context(), r.FormValue("folderName"), files)
	if err != nil {
		h.fail(w, r, err, "Failed to upload folder", false)
		return
	}

	response.OK(w, uploadFolderData{Message: "Folder uploaded successfully", FolderURL: folderURL})
}

// FilesAndFolders godoc
//
//	@Summary		List hierarchy
//	@Description	Lists the whole bucket and returns it as a nested folder/file tree keyed by name.
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/files-and-folders [get]
func (h *Handler) FilesAndFolders(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListHierarchy(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch files and folders", false)
		return
	}
	if len(res.Conflicts) > 0 {
		zerolog.Ctx(r.Context()).Warn().
			Strs("keys", res.Conflicts).
			Msg("keys skipped: a path segment is both a file and a folder")
	}

	response.OK(w, res.Root.Children)
}

// DeleteItem godoc
//
//	@Summary		Delete file or folder
//	@Description	Deletes the object at path, or every object whose key starts with path.
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			request	body		deleteItemRequest	true	"Item path"
//	@Success		200		{object}	messageData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/delete-item [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	var req deleteItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, ErrPathRequired.Message)
		return
	}

	res, err := h.svc.DeleteItem(r.Context(), req.Path)
	if errors.Is(err, ErrItemNotFound) {
		response.NotFound(w, ErrItemNotFound.Message)
		return
	}
	if err != nil {
		h.fail(w, r, err, "Failed to delete item", true)
		return
	}

	msg := "File deleted successfully"
	if res.Folder {
		msg = "Folder and its contents deleted successfully"
	}
	response.OK(w, messageData{Message: msg})
}

// MoveFile godoc
//
//	@Summary		Move file
//	@Description	Renames fileName to "<targetFolder>/<base name>". Folders are not moved recursively.
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			request	body		moveFileRequest	true	"Source file and target folder"
//	@Success		200		{object}	moveFileData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/move-file [post]
func (h *Handler) MoveFile(w http.ResponseWriter, r *http.Request) {
	var req moveFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, ErrMoveArgsRequired.Message)
		return
	}

	if _, err := h.svc.MoveFile(r.Context(), req.FileName, req.TargetFolder); err != nil {
		h.fail(w, r, err, "Failed to move file", false)
		return
	}

	response.OK(w, moveFileData{Success: true, Message: "File moved successfully"})
}

// Search godoc
//
//	@Summary		Search
//	@Description	Case-insensitive substring match over every object key.
//	@Tags			files
//	@Produce		json
//	@Param			query	query		string	true	"Text to look for"
//	@Success		200		{array}		SearchResult
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, r, err, "Failed to search files and folders", false)
		return
	}

	response.OK(w, results)
}

// parseMultipart parses the request body and writes a client error when it
// is not a usable multipart form.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request, missingMsg string) bool {
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil {
		return true
	}
	h.rejectBody(w, err, missingMsg)
	return false
}

// rejectBody answers a body read error: 413 past the size cap, else 400.
func (h *Handler) rejectBody(w http.ResponseWriter, err error, missingMsg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
		return
	}
	response.BadRequest(w, missingMsg)
}

// fail maps err onto a response: validation errors become 400 with their
// own message, anything else is a 500 with the endpoint's generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string, withDetails bool) {
	if vmsg, ok := validationMessage(err); ok {
		response.BadRequest(w, vmsg)
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
		return
	}

	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	if withDetails {
		response.ErrorWithDetails(w, http.StatusInternalServerError, msg, err.Error())
		return
	}
	response.InternalError(w, msg)
}

// partFileName returns the filename sent by the client. multipart reduces
// filenames to their base name, which would flatten "a/b.txt" uploads.
func partFileName(h textproto.MIMEHeader, base string) string {
	_, params, err := mime.ParseMediaType(h.Get("Content-Disposition"))
	if err == nil && params["filename"] != "" {
		return strings.TrimLeft(params["filename"], storage.Separator)
	}
	return base
}

func closeAll(files []File) {
	for _, f := range files {
		if c, ok := f.Content.(multipart.File); ok {
			_ = c.Close()
		}
	}
}
