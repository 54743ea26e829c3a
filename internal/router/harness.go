package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/spec"
	"github.com/mberliner/reflexio/internal/dto"
)

// HarnessRouter exposes one adapter to a remote optimizer.
type HarnessRouter struct {
	e       *echo.Echo
	adapter adapter.Adapter
	task    spec.TaskSpec
}

func NewHarnessRouter(e *echo.Echo, a adapter.Adapter, task spec.TaskSpec) *HarnessRouter {
	return &HarnessRouter{
		e:       e,
		adapter: a,
		task:    task,
	}
}

func (r *HarnessRouter) Bind() {
	g := r.e.Group("/api/v1")
	g.GET("/task", r.taskHandler)
	g.POST("/evaluate", r.evaluateHandler)
	g.POST("/reflective-dataset", r.reflectiveDatasetHandler)
}

// taskHandler godoc
// @Summary Task descriptor
// @Description Returns the task descriptor the harness was started with, after defaults.
// @Tags harness
// @Produce json
// @Success 200 {object} spec.TaskSpec
// @Router /api/v1/task [get]
func (r *HarnessRouter) taskHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, r.task)
}

// evaluateHandler godoc
// @Summary Evaluate a candidate
// @Description Runs the candidate over the batch. Technical failures are reported in errors and excluded from scores.
// @Tags harness
// @Accept json
// @Produce json
// @Param request body dto.EvaluateRequest true "Batch and candidate"
// @Success 200 {object} dto.EvaluateResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/evaluate [post]
func (r *HarnessRouter) evaluateHandler(c echo.Context) error {
	var req dto.EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("malformed request body", err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if req.DisableCache {
		ctx = engine.WithoutCache(ctx)
	}

	res, err := r.adapter.Evaluate(ctx, dto.ToExamples(req.Batch), adapter.Candidate(req.Candidate), req.CaptureTraces)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.NewEvaluateResponse(r.adapter.Name(), res, r.task.Scoring.Perfect()))
}

// reflectiveDatasetHandler godoc
// @Summary Build a reflective dataset
// @Description Curates feedback records from a previous evaluation of the same batch.
// @Tags harness
// @Accept json
// @Produce json
// @Param request body dto.ReflectiveDatasetRequest true "Batch and evaluation result"
// @Success 200 {object} dto.ReflectiveDatasetResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/reflective-dataset [post]
func (r *HarnessRouter) reflectiveDatasetHandler(c echo.Context) error {
	var req dto.ReflectiveDatasetRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("malformed request body", err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	data, err := r.adapter.MakeReflectiveDataset(dto.ToExamples(req.Batch), req.Result)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.NewReflectiveDatasetResponse(r.adapter.Name(), data))
}
