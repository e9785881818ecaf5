package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/verse-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/verse-service/internal/adapters/http/web"
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/domain"
)

const (
	adminPath   = "/admin"
	adminTitle  = "经文管理"
	flashCookie = "verse_flash"

	pageDashboard = "dashboard"
	pageVerses    = "verses"
	pageEdit      = "edit"
	pageSettings  = "settings"
)

// AdminPages serves the server-rendered admin panel under /admin.
// Every form post redirects back to a page and leaves a one-shot flash message.
type AdminPages struct {
	svc *app.AdminService
	api *AdminHandler
}

// NewAdminPages creates the panel. It shares session cookies and upload
// limits with the JSON API.
func NewAdminPages(svc *app.AdminService, opts AdminOptions) *AdminPages {
	return &AdminPages{svc: svc, api: NewAdminHandler(svc, opts)}
}

type navItem struct {
	Page  string
	Label string
}

type verseForm struct {
	ID    string
	Zh    string
	RefZh string
	En    string
	RefEn string
}

type adminPageData struct {
	Title         string
	Heading       string
	Page          string
	Nav           []navItem
	Flash         string
	Stats         dto.StatsResponse
	Query         string
	Items         []dto.VerseResponse
	Form          verseForm
	NoData        string
	DeleteConfirm string
	ClearConfirm  string
}

type loginPageData struct {
	Title string
	Flash string
}

var adminNav = []navItem{
	{pageDashboard, domain.PageTitles[pageDashboard]},
	{pageVerses, domain.PageTitles[pageVerses]},
	{pageEdit, domain.PageTitles["add"]},
	{pageSettings, domain.PageTitles[pageSettings]},
}

// Show handles GET /admin?page=dashboard|verses|edit|settings.
// Without a session it renders the login form.
func (p *AdminPages) Show(c *gin.Context) {
	if !middleware.LoggedIn(c, p.svc) {
		c.HTML(http.StatusOK, web.LoginPage, loginPageData{Title: adminTitle, Flash: takeFlash(c)})
		return
	}

	ctx := c.Request.Context()
	data := newAdminPageData(c.Query("page"), takeFlash(c))

	switch data.Page {
	case pageDashboard:
		stats, err := p.svc.Stats(ctx)
		if err != nil {
			dto.HandleError(c, err)
			return
		}

		data.Stats = dto.NewStatsResponse(stats)
	case pageVerses:
		data.Query = c.Query("q")

		items, err := p.svc.List(ctx, data.Query)
		if err != nil {
			dto.HandleError(c, err)
			return
		}

		data.Items = dto.NewVerseListResponse(items, data.Query).Items
	case pageEdit:
		if id := c.Query("id"); id != "" {
			item, err := p.svc.Get(ctx, id)
			if err != nil {
				p.fail(c, err, pageVerses)
				return
			}

			data.Form = formFromQuotation(&item.Quotation)
		}

		data.Heading = formTitle(data.Form.ID)
	}

	c.HTML(http.StatusOK, web.AdminPage, data)
}

// Login handles the login form post.
func (p *AdminPages) Login(c *gin.Context) {
	token, err := p.svc.Login(c.Request.Context(), c.PostForm("password"))
	if err != nil {
		if !domain.IsUnauthorized(err) {
			dto.HandleError(c, err)
			return
		}

		c.HTML(http.StatusUnauthorized, web.LoginPage, loginPageData{Title: adminTitle, Flash: domain.UserMessage(err)})

		return
	}

	p.api.cookies.Set(c, token)
	redirectTo(c, pageDashboard)
}

// Logout handles the logout form post.
func (p *AdminPages) Logout(c *gin.Context) {
	p.svc.Logout(c.Request.Context(), middleware.SessionToken(c))
	p.api.cookies.Clear(c)
	c.Redirect(http.StatusSeeOther, adminPath)
}

// Save handles the shared add/edit form. An empty id creates.
func (p *AdminPages) Save(c *gin.Context) {
	form := verseForm{
		ID:    c.PostForm("id"),
		Zh:    c.PostForm("zh"),
		RefZh: c.PostForm("refZh"),
		En:    c.PostForm("en"),
		RefEn: c.PostForm("refEn"),
	}

	req := dto.VerseRequest{Zh: form.Zh, RefZh: form.RefZh, En: form.En, RefEn: form.RefEn}

	_, created, err := p.svc.Save(c.Request.Context(), form.ID, req.Quotation())
	if err != nil {
		if domain.IsValidation(err) {
			data := newAdminPageData(pageEdit, domain.UserMessage(err))
			data.Form = form
			data.Heading = formTitle(form.ID)
			c.HTML(http.StatusBadRequest, web.AdminPage, data)

			return
		}

		p.fail(c, err, pageVerses)

		return
	}

	msg := domain.MsgUpdated
	if created {
		msg = domain.MsgAdded
	}

	setFlash(c, msg)
	redirectTo(c, pageVerses)
}

// Delete handles the per-row delete form. The browser asks for confirmation.
func (p *AdminPages) Delete(c *gin.Context) {
	if err := p.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		p.fail(c, err, pageVerses)
		return
	}

	setFlash(c, domain.MsgDeleted)
	redirectTo(c, pageVerses)
}

// Clear handles the clear-all form. The browser asks for confirmation.
func (p *AdminPages) Clear(c *gin.Context) {
	if err := p.svc.ClearAll(c.Request.Context()); err != nil {
		p.fail(c, err, pageSettings)
		return
	}

	setFlash(c, domain.MsgCleared)
	redirectTo(c, pageDashboard)
}

// ChangePassword handles the settings password form.
func (p *AdminPages) ChangePassword(c *gin.Context) {
	if err := p.svc.ChangePassword(c.Request.Context(), c.PostForm("password")); err != nil {
		p.fail(c, err, pageSettings)
		return
	}

	setFlash(c, domain.MsgPasswordUpdated)
	redirectTo(c, pageSettings)
}

// Import handles the settings upload form.
func (p *AdminPages) Import(c *gin.Context) {
	n, err := p.api.importRequest(c)
	if err != nil {
		p.fail(c, err, pageSettings)
		return
	}

	setFlash(c, fmt.Sprintf(domain.MsgImportedFormat, n))
	redirectTo(c, pageVerses)
}

// Export handles the settings download links. The flash shows on the next page load.
func (p *AdminPages) Export(c *gin.Context) {
	file, err := p.svc.Export(c.Request.Context(), c.DefaultQuery("format", "json"))
	if err != nil {
		p.fail(c, err, pageSettings)
		return
	}

	setFlash(c, domain.MsgExported)
	writeExport(c, file)
}

// RegisterPageRoutes registers the panel on engine.
func (p *AdminPages) RegisterPageRoutes(engine *gin.Engine) {
	engine.GET(adminPath, p.Show)
	engine.POST(adminPath+"/login", p.Login)
	engine.POST(adminPath+"/logout", p.Logout)

	protected := engine.Group(adminPath, middleware.RequireSessionPage(p.svc, adminPath))
	protected.POST("/verses", p.Save)
	protected.POST("/verses/:id/delete", p.Delete)
	protected.POST("/clear", p.Clear)
	protected.POST("/password", p.ChangePassword)
	protected.POST("/import", p.Import)
	protected.GET("/export", p.Export)
}

// fail shows operator-facing errors as a flash on page and sends the rest
// through the JSON error path.
func (p *AdminPages) fail(c *gin.Context, err error, page string) {
	switch {
	case domain.IsValidation(err), domain.IsNotFound(err), domain.IsConflict(err), domain.IsUnauthorized(err):
		setFlash(c, domain.UserMessage(err))
		redirectTo(c, page)
	default:
		dto.HandleError(c, err)
	}
}

func newAdminPageData(page, flash string) adminPageData {
	switch page {
	case pageVerses, pageEdit, pageSettings:
	default:
		page = pageDashboard
	}

	return adminPageData{
		Title:         adminTitle,
		Heading:       domain.PageTitles[page],
		Page:          page,
		Nav:           adminNav,
		Flash:         flash,
		NoData:        domain.MsgNoData,
		DeleteConfirm: domain.MsgDeleteConfirm,
		ClearConfirm:  domain.MsgClearConfirmation,
	}
}

func formFromQuotation(q *domain.Quotation) verseForm {
	return verseForm{
		ID:    q.ID,
		Zh:    q.PrimaryText,
		RefZh: q.PrimaryReference,
		En:    q.SecondaryText,
		RefEn: q.SecondaryReference,
	}
}

func formTitle(id string) string {
	if id == "" {
		return domain.MsgAddFormTitle
	}

	return domain.MsgEditFormTitle
}

func redirectTo(c *gin.Context, page string) {
	c.Redirect(http.StatusSeeOther, adminPath+"?"+url.Values{"page": {page}}.Encode())
}

// setFlash stores a one-shot message for the next page render.
// gin escapes the value, so non-ASCII text is safe.
func setFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, msg, 0, adminPath, "", false, true)
}

// takeFlash returns and clears the pending message.
func takeFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookie)
	if err != nil || msg == "" {
		return ""
	}

	c.SetCookie(flashCookie, "", -1, adminPath, "", false, true)

	return msg
}
