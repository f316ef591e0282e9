package controller

import (
	"cbt_backend/internal/service"
	"cbt_backend/internal/util"
	"cbt_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
	InsightService *service.InsightService
}

func NewAttemptController(attemptService *service.AttemptService, insightService *service.InsightService) *AttemptController {
	return &AttemptController{
		AttemptService: attemptService,
		InsightService: insightService,
	}
}

// StartAttempt godoc
// @Summary Start a test attempt from a template
// @Description Standard mode returns the full sampled batch; adaptive mode returns the first question only. Nothing is persisted when the pool cannot satisfy the template.
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.StartAttemptRequest true "attempt parameters"
// @Success 201 {object} util.Response{data=service.StartAttemptResponse}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response "question pool cannot satisfy the template"
// @Router /api/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AttemptService.StartAttempt(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	monitoring.AttemptsStarted.WithLabelValues(string(resp.Mode)).Inc()
	util.Created(ctx, resp)
}

// SubmitAnswer godoc
// @Summary Submit or resubmit an answer
// @Description Resubmitting the same question overwrites the previous selection. In adaptive mode the response carries the next question or a completion signal.
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "attempt id"
// @Param   body body service.SubmitAnswerRequest true "answer"
// @Success 200 {object} util.Response{data=service.SubmitAnswerResponse}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "question was not presented in this attempt"
// @Failure 409 {object} util.Response "attempt is no longer in progress"
// @Router /api/attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AttemptService.SubmitAnswer(claims.UserID, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

type reviewRequest struct {
	QuestionID uint `json:"questionId" binding:"required"`
}

// ToggleReview godoc
// @Summary Flip the mark-for-review flag on one question
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "attempt id"
// @Param   body body reviewRequest true "question"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/review [put]
func (c *AttemptController) ToggleReview(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req reviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	marked, err := c.AttemptService.ToggleReview(claims.UserID, ctx.Param("id"), req.QuestionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questionId": req.QuestionID, "isMarkedForReview": marked})
}

// FinishAttempt godoc
// @Summary Finish and score an attempt
// @Description Idempotent: finishing an already-finished attempt returns the stored score unchanged.
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "attempt id"
// @Success 200 {object} util.Response{data=service.FinalScore}
// @Failure 404 {object} util.Response
// @Router /api/attempts/{id}/finish [post]
func (c *AttemptController) FinishAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	score, err := c.AttemptService.Finish(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	monitoring.AttemptsFinished.WithLabelValues(string(score.Status)).Inc()
	util.Success(ctx, score)
}

// AbandonAttempt godoc
// @Summary Abandon an in-progress attempt
// @Description The attempt is still scored on whatever was answered; only the status differs.
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "attempt id"
// @Success 200 {object} util.Response{data=service.FinalScore}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/attempts/{id}/abandon [post]
func (c *AttemptController) AbandonAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	score, err := c.AttemptService.Abandon(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	monitoring.AttemptsFinished.WithLabelValues(string(score.Status)).Inc()
	util.Success(ctx, score)
}

// GetAttempt godoc
// @Summary Full attempt detail with per-question correctness
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "attempt id"
// @Success 200 {object} util.Response{data=service.AttemptDetail}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.AttemptService.GetDetail(claims.UserID, claims.Role, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// ListAttempts godoc
// @Summary Current user's attempt history
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "page number"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	attempts, total, err := c.AttemptService.ListAttempts(claims.UserID, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

// GetInsight godoc
// @Summary AI-generated feedback for a finished attempt
// @Tags attempts
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "attempt id"
// @Success 200 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "attempt is still in progress"
// @Failure 503 {object} util.Response "insight upstream unavailable"
// @Router /api/attempts/{id}/insight [get]
func (c *AttemptController) GetInsight(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	text, err := c.InsightService.Generate(claims.UserID, claims.Role, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"insight": text})
}
