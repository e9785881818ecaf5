package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/verse-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/codec"
	"github.com/jsamuelsen/verse-service/internal/domain"
)

// AdminOptions configures the admin handlers.
type AdminOptions struct {
	SecureCookie  bool
	MaxImportSize int64
}

// AdminHandler serves the admin JSON API under /api/v1/admin.
type AdminHandler struct {
	svc       *app.AdminService
	cookies   middleware.SessionCookies
	maxImport int64
}

// NewAdminHandler creates the handler.
func NewAdminHandler(svc *app.AdminService, opts AdminOptions) *AdminHandler {
	return &AdminHandler{
		svc:       svc,
		cookies:   middleware.SessionCookies{Secure: opts.SecureCookie},
		maxImport: opts.MaxImportSize,
	}
}

// Login handles POST /api/v1/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := dto.Bind(c, &req); err != nil {
		dto.HandleError(c, dto.ToDomainError(err, domain.MsgParseFailed))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Password)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	h.cookies.Set(c, token)
	c.Status(http.StatusNoContent)
}

// Logout handles POST /api/v1/admin/logout. It succeeds without a session too.
func (h *AdminHandler) Logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context(), middleware.SessionToken(c))
	h.cookies.Clear(c)
	c.Status(http.StatusNoContent)
}

// List handles GET /api/v1/admin/verses?q=<term>.
func (h *AdminHandler) List(c *gin.Context) {
	term := c.Query("q")

	items, err := h.svc.List(c.Request.Context(), term)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewVerseListResponse(items, term))
}

// Get handles GET /api/v1/admin/verses/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewIndexedResponse(&item))
}

// Create handles POST /api/v1/admin/verses.
func (h *AdminHandler) Create(c *gin.Context) {
	var req dto.VerseRequest
	if err := dto.Bind(c, &req); err != nil {
		dto.HandleError(c, dto.ToDomainError(err, domain.MsgFillAllFields))
		return
	}

	q, err := h.svc.Create(c.Request.Context(), req.Quotation())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SavedVerseResponse{Message: domain.MsgAdded, Verse: dto.NewVerseResponse(&q)})
}

// Update handles PUT /api/v1/admin/verses/:id.
func (h *AdminHandler) Update(c *gin.Context) {
	var req dto.VerseRequest
	if err := dto.Bind(c, &req); err != nil {
		dto.HandleError(c, dto.ToDomainError(err, domain.MsgFillAllFields))
		return
	}

	q, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.Quotation())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SavedVerseResponse{Message: domain.MsgUpdated, Verse: dto.NewVerseResponse(&q)})
}

// Delete handles DELETE /api/v1/admin/verses/:id.
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: domain.MsgDeleted})
}

// Clear handles DELETE /api/v1/admin/verses.
func (h *AdminHandler) Clear(c *gin.Context) {
	if err := h.svc.ClearAll(c.Request.Context()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: domain.MsgCleared})
}

// Export handles GET /api/v1/admin/export?format=json|yaml.
func (h *AdminHandler) Export(c *gin.Context) {
	file, err := h.svc.Export(c.Request.Context(), c.DefaultQuery("format", "json"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	writeExport(c, file)
}

// Import handles POST /api/v1/admin/import. The document is either the
// multipart field "file" or the raw body.
func (h *AdminHandler) Import(c *gin.Context) {
	n, err := h.importRequest(c)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{Message: fmt.Sprintf(domain.MsgImportedFormat, n), Imported: n})
}

// ChangePassword handles PUT /api/v1/admin/password.
func (h *AdminHandler) ChangePassword(c *gin.Context) {
	var req dto.PasswordRequest
	if err := dto.Bind(c, &req); err != nil {
		dto.HandleError(c, dto.ToDomainError(err, domain.MsgParseFailed))
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), req.Password); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: domain.MsgPasswordUpdated})
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewStatsResponse(stats))
}

// RegisterAdminRoutes registers login and logout on rg and everything else
// behind the session check.
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.POST("/login", h.Login)
	admin.POST("/logout", h.Logout)

	protected := admin.Group("", middleware.RequireSession(h.svc))
	protected.GET("/verses", h.List)
	protected.POST("/verses", h.Create)
	protected.DELETE("/verses", h.Clear)
	protected.GET("/verses/:id", h.Get)
	protected.PUT("/verses/:id", h.Update)
	protected.DELETE("/verses/:id", h.Delete)
	protected.GET("/export", h.Export)
	protected.POST("/import", h.Import)
	protected.PUT("/password", h.ChangePassword)
	protected.GET("/stats", h.Stats)
}

// importRequest runs an import from either body shape and returns the count.
func (h *AdminHandler) importRequest(c *gin.Context) (int, error) {
	if h.maxImport > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImport)
	}

	body, format, err := importSource(c)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	return h.svc.Import(c.Request.Context(), format, body)
}

// importSource opens the uploaded document and decides its format: the
// format query parameter, then a .yaml/.yml extension or the content type,
// else JSON. Only an explicit format can be refused as unknown.
func importSource(c *gin.Context) (io.ReadCloser, string, error) {
	format := c.Query("format")

	mediaType, _, _ := mime.ParseMediaType(c.ContentType())
	if mediaType != "multipart/form-data" {
		if format == "" {
			format = formatFromContentType(mediaType)
		}

		return c.Request.Body, format, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}

		return nil, "", domain.NewValidationError("file", domain.MsgParseFailed)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening upload: %w", err)
	}

	if format == "" {
		format = codec.ForFilename(fh.Filename).Format()
	}

	return f, format, nil
}

func formatFromContentType(mediaType string) string {
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return "yaml"
	default:
		return "json"
	}
}

// writeExport sends file as a download.
func writeExport(c *gin.Context, file *app.ExportFile) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
