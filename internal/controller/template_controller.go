package controller

import (
	"cbt_backend/internal/service"
	"cbt_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TemplateController struct {
	TemplateService *service.TemplateService
}

func NewTemplateController(templateService *service.TemplateService) *TemplateController {
	return &TemplateController{TemplateService: templateService}
}

// CreateTemplate godoc
// @Summary Create a test template
// @Description Each section names a pool scope and how many questions to draw from it.
// @Tags templates
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.TemplateRequest true "template"
// @Success 201 {object} util.Response{data=model.TestTemplate}
// @Failure 400 {object} util.Response
// @Router /api/templates [post]
func (c *TemplateController) CreateTemplate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.TemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tpl, err := c.TemplateService.Create(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, tpl)
}

// GetTemplate godoc
// @Summary One template with its ordered sections
// @Tags templates
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "template id"
// @Success 200 {object} util.Response{data=model.TestTemplate}
// @Failure 404 {object} util.Response
// @Router /api/templates/{id} [get]
func (c *TemplateController) GetTemplate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	tpl, err := c.TemplateService.Get(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, tpl)
}

// ListTemplates godoc
// @Summary List templates
// @Tags templates
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "page number"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/templates [get]
func (c *TemplateController) ListTemplates(ctx *gin.Context) {
	page, limit := pagination(ctx)
	templates, total, err := c.TemplateService.List(page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: templates, Total: total, Page: page, Limit: limit})
}

// UpdateTemplate godoc
// @Summary Update a template and replace its sections
// @Tags templates
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "template id"
// @Param   body body service.TemplateRequest true "template"
// @Success 200 {object} util.Response{data=model.TestTemplate}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/templates/{id} [put]
func (c *TemplateController) UpdateTemplate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.TemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tpl, err := c.TemplateService.Update(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, tpl)
}

// DeleteTemplate godoc
// @Summary Delete a template
// @Tags templates
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "template id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/templates/{id} [delete]
func (c *TemplateController) DeleteTemplate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.TemplateService.Delete(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
