package handlers

import (
	"os"
	"path/filepath"
	"strconv"

	"renthub/internal/middleware"
	"renthub/internal/services"
	"renthub/pkg/config"
	"renthub/pkg/pagination"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AgreementHandler serves landlord agreement CRUD and document uploads.
type AgreementHandler struct {
	agreementService *services.AgreementService
}

func NewAgreementHandler(agreementService *services.AgreementService) *AgreementHandler {
	return &AgreementHandler{agreementService: agreementService}
}

// Create authors a new agreement.
func (h *AgreementHandler) Create(c *gin.Context) {
	var body services.AgreementRequestBody
	if !bindJSON(c, &body) {
		return
	}

	agreement, err := h.agreementService.Create(middleware.CurrentUserID(c), &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Created(c, agreement)
}

// List returns the landlord's agreements.
func (h *AgreementHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	agreements, total, err := h.agreementService.ListByLandlord(
		middleware.CurrentUserID(c), c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithPage(c, agreements, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID returns one of the landlord's agreements.
func (h *AgreementHandler) GetByID(c *gin.Context) {
	agreementID, ok := parseIDParam(c)
	if !ok {
		return
	}

	agreement, err := h.agreementService.GetByID(middleware.CurrentUserID(c), agreementID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, agreement)
}

// Update edits an agreement still in an editable status.
func (h *AgreementHandler) Update(c *gin.Context) {
	agreementID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body services.AgreementRequestBody
	if !bindJSON(c, &body) {
		return
	}

	agreement, err := h.agreementService.Update(middleware.CurrentUserID(c), agreementID, &body)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, agreement)
}

// Delete removes an agreement and its document files.
func (h *AgreementHandler) Delete(c *gin.Context) {
	agreementID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.agreementService.Delete(middleware.CurrentUserID(c), agreementID); err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithMessage(c, "agreement deleted", nil)
}

// UploadDocuments attaches multipart files to an agreement. Files are stored
// under the upload dir with uuid names; the original name survives in the
// descriptor only.
func (h *AgreementHandler) UploadDocuments(c *gin.Context) {
	agreementID, ok := parseIDParam(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart form: "+err.Error())
		return
	}
	files := form.File["documents"]
	if len(files) == 0 {
		response.BadRequest(c, "no documents in form")
		return
	}

	cfg := config.GetConfig()
	uploadDir := filepath.Join(cfg.Upload.Dir, "agreements")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		response.ServerError(c, "failed to prepare upload directory")
		return
	}

	descriptors := make([]services.DocumentDescriptor, 0, len(files))
	for _, file := range files {
		if file.Size > cfg.Upload.MaxFileSize {
			response.BadRequest(c, "file "+file.Filename+" exceeds the size limit")
			return
		}

		storedName := uuid.NewString() + filepath.Ext(file.Filename)
		storedPath := filepath.Join(uploadDir, storedName)
		if err := c.SaveUploadedFile(file, storedPath); err != nil {
			response.ServerError(c, "failed to store "+file.Filename)
			return
		}

		descriptors = append(descriptors, services.DocumentDescriptor{
			Filename:     storedName,
			OriginalName: file.Filename,
			Path:         storedPath,
			Size:         file.Size,
			MimeType:     file.Header.Get("Content-Type"),
		})
	}

	agreement, err := h.agreementService.AddDocuments(middleware.CurrentUserID(c), agreementID, descriptors)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, agreement)
}

// RemoveDocument detaches a document and deletes its file.
func (h *AgreementHandler) RemoveDocument(c *gin.Context) {
	agreementID, ok := parseIDParam(c)
	if !ok {
		return
	}

	docIDStr := c.Param("docId")
	docID, err := strconv.ParseUint(docIDStr, 10, 32)
	if err != nil || docID == 0 {
		response.BadRequest(c, "invalid document id")
		return
	}

	err = h.agreementService.RemoveDocument(middleware.CurrentUserID(c), agreementID, uint(docID))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.SuccessWithMessage(c, "document removed", nil)
}
