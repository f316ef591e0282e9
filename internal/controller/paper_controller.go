package controller

import (
	"cbt_backend/internal/service"
	"cbt_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PaperController struct {
	PaperService *service.PaperService
}

func NewPaperController(paperService *service.PaperService) *PaperController {
	return &PaperController{PaperService: paperService}
}

// CreatePaper godoc
// @Summary Create a paper
// @Tags papers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.PaperRequest true "paper"
// @Success 201 {object} util.Response{data=model.Paper}
// @Failure 400 {object} util.Response
// @Router /api/papers [post]
func (c *PaperController) CreatePaper(ctx *gin.Context) {
	var req service.PaperRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	paper, err := c.PaperService.CreatePaper(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, paper)
}

// GetPaper godoc
// @Summary One paper with its section tree
// @Tags papers
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "paper id"
// @Success 200 {object} util.Response{data=model.Paper}
// @Failure 404 {object} util.Response
// @Router /api/papers/{id} [get]
func (c *PaperController) GetPaper(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	paper, err := c.PaperService.GetPaper(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, paper)
}

// ListPapers godoc
// @Summary List papers
// @Tags papers
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "page number"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/papers [get]
func (c *PaperController) ListPapers(ctx *gin.Context) {
	page, limit := pagination(ctx)
	papers, total, err := c.PaperService.ListPapers(page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: papers, Total: total, Page: page, Limit: limit})
}

// UpdatePaper godoc
// @Summary Update a paper
// @Tags papers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "paper id"
// @Param   body body service.PaperRequest true "paper"
// @Success 200 {object} util.Response{data=model.Paper}
// @Failure 404 {object} util.Response
// @Router /api/papers/{id} [put]
func (c *PaperController) UpdatePaper(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.PaperRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	paper, err := c.PaperService.UpdatePaper(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, paper)
}

// DeletePaper godoc
// @Summary Delete a paper and everything under it
// @Description Sections, subsections and questions scoped to the paper are removed as well.
// @Tags papers
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "paper id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/papers/{id} [delete]
func (c *PaperController) DeletePaper(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.PaperService.DeletePaper(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateSection godoc
// @Summary Add a section to a paper
// @Tags papers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "paper id"
// @Param   body body service.SectionRequest true "section"
// @Success 201 {object} util.Response{data=model.Section}
// @Failure 404 {object} util.Response
// @Router /api/papers/{id}/sections [post]
func (c *PaperController) CreateSection(ctx *gin.Context) {
	paperID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.PaperService.CreateSection(paperID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// UpdateSection godoc
// @Summary Update a section
// @Tags papers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "section id"
// @Param   body body service.SectionRequest true "section"
// @Success 200 {object} util.Response{data=model.Section}
// @Failure 404 {object} util.Response
// @Router /api/sections/{id} [put]
func (c *PaperController) UpdateSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.PaperService.UpdateSection(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// DeleteSection godoc
// @Summary Delete a section, its subsections and their questions
// @Tags papers
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "section id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sections/{id} [delete]
func (c *PaperController) DeleteSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.PaperService.DeleteSection(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateSubsection godoc
// @Summary Add a subsection to a section
// @Tags papers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "section id"
// @Param   body body service.SectionRequest true "subsection"
// @Success 201 {object} util.Response{data=model.Subsection}
// @Failure 404 {object} util.Response
// @Router /api/sections/{id}/subsections [post]
func (c *PaperController) CreateSubsection(ctx *gin.Context) {
	sectionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.PaperService.CreateSubsection(sectionID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// UpdateSubsection godoc
// @Summary Update a subsection
// @Tags papers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "subsection id"
// @Param   body body service.SectionRequest true "subsection"
// @Success 200 {object} util.Response{data=model.Subsection}
// @Failure 404 {object} util.Response
// @Router /api/subsections/{id} [put]
func (c *PaperController) UpdateSubsection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.PaperService.UpdateSubsection(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// DeleteSubsection godoc
// @Summary Delete a subsection and its questions
// @Tags papers
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "subsection id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/subsections/{id} [delete]
func (c *PaperController) DeleteSubsection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.PaperService.DeleteSubsection(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
