package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/verse-service/internal/adapters/http/web"
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/domain"
)

// ViewerHandler serves the public page and its JSON API.
type ViewerHandler struct {
	viewer        *app.Viewer
	fallbackImage string
	now           func() time.Time
}

// NewViewerHandler creates the handler. fallbackImage is an image URL used,
// with a random query, until the first background fetch has finished.
func NewViewerHandler(viewer *app.Viewer, fallbackImage string) *ViewerHandler {
	return &ViewerHandler{viewer: viewer, fallbackImage: fallbackImage, now: time.Now}
}

type viewerPageData struct {
	Verse         *dto.VerseResponse
	Placeholder   string
	Background    string
	ShareTitle    string
	ShareText     string
	CopiedMessage string
	NextURL       string
}

// Page handles GET /?exclude=<id>.
func (h *ViewerHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()

	q, err := h.viewer.Pick(ctx, c.Query("exclude"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	data := viewerPageData{
		Placeholder:   domain.PlaceholderText,
		Background:    h.background(),
		ShareTitle:    domain.ShareTitle,
		CopiedMessage: domain.MsgCopied,
		NextURL:       "/",
	}

	if q != nil {
		resp := dto.NewVerseResponse(q)
		data.Verse = &resp
		data.ShareText = q.ShareText()
		data.NextURL = "/?exclude=" + url.QueryEscape(q.ID)
	}

	c.HTML(http.StatusOK, web.ViewerPage, data)
}

// Random handles GET /api/v1/verses/random?exclude=<id>.
func (h *ViewerHandler) Random(c *gin.Context) {
	q, err := h.viewer.Pick(c.Request.Context(), c.Query("exclude"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := dto.RandomVerseResponse{Background: h.background()}

	if q == nil {
		resp.Placeholder = domain.PlaceholderText
	} else {
		v := dto.NewVerseResponse(q)
		resp.Verse = &v
	}

	c.JSON(http.StatusOK, resp)
}

// Share handles GET /api/v1/verses/:id/share.
func (h *ViewerHandler) Share(c *gin.Context) {
	text, err := h.viewer.ShareText(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ShareResponse{Title: domain.ShareTitle, Text: text})
}

// Background handles GET /api/v1/background. It answers 404 until a fetch succeeds.
func (h *ViewerHandler) Background(c *gin.Context) {
	b, ok := h.viewer.Backdrop()
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("background", ""))
		return
	}

	c.JSON(http.StatusOK, dto.BackgroundResponse{URL: b.URL, Seed: b.Seed})
}

// RegisterViewerRoutes registers the page on engine and the API on api.
func (h *ViewerHandler) RegisterViewerRoutes(engine *gin.Engine, api *gin.RouterGroup) {
	engine.GET("/", h.Page)

	api.GET("/verses/random", h.Random)
	api.GET("/verses/:id/share", h.Share)
	api.GET("/background", h.Background)
}

func (h *ViewerHandler) background() string {
	if b, ok := h.viewer.Backdrop(); ok {
		return b.URL
	}

	if h.fallbackImage == "" {
		return ""
	}

	return h.fallbackImage + "?random=" + strconv.FormatInt(h.now().UnixMilli(), 10)
}
