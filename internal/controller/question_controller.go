package controller

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/service"
	"cbt_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// CreateQuestion godoc
// @Summary Create a question
// @Description Options accept either an array of strings or an array of {order, text} objects.
// @Tags questions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.QuestionRequest true "question"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Create(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// GetQuestion godoc
// @Summary One question with its options
// @Tags questions
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "question id"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	question, err := c.QuestionService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// ListQuestions godoc
// @Summary List questions, optionally filtered by scope
// @Tags questions
// @Produce  json
// @Security BearerAuth
// @Param   paperId query int true "paper id"
// @Param   sectionId query int false "section id"
// @Param   subsectionId query int false "subsection id"
// @Param   page query int false "page number"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	paperID, err := strconv.ParseUint(ctx.Query("paperId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid paperId")
		return
	}

	scope := model.PoolScope{PaperID: uint(paperID)}
	if raw := ctx.Query("sectionId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			util.BadRequest(ctx, "invalid sectionId")
			return
		}
		sectionID := uint(id)
		scope.SectionID = &sectionID
	}
	if raw := ctx.Query("subsectionId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			util.BadRequest(ctx, "invalid subsectionId")
			return
		}
		subsectionID := uint(id)
		scope.SubsectionID = &subsectionID
	}

	page, limit := pagination(ctx)
	questions, total, err := c.QuestionService.List(scope, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: questions, Total: total, Page: page, Limit: limit})
}

// UpdateQuestion godoc
// @Summary Update a question and replace its options
// @Tags questions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "question id"
// @Param   body body service.QuestionRequest true "question"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Update(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "question id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.QuestionService.Delete(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
