package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core"
	"github.com/hfarfan/evadocente/core/academic"
	"github.com/hfarfan/evadocente/core/evaluation"
)

type evaluationApi struct {
	svc          *evaluation.Service
	academicRepo academic.Repository
}

func registerEvaluationAPI(g *echo.Group, svc *evaluation.Service, academicRepo academic.Repository) {
	api := evaluationApi{
		svc:          svc,
		academicRepo: academicRepo,
	}

	g.GET("/periods", api.queryPeriods)

	eg := g.Group("/evaluations")
	eg.POST("/instances", api.createInstance)
	eg.POST("/instances/:id/finalize", api.finalizeInstance)
	eg.POST("/assignments", api.createAssignment)
	eg.POST("/responses", api.submitResponses)
	eg.PUT("/authority-scores", api.setAuthorityScore)
	eg.POST("/periods/:periodID/reminders", api.sendReminders)

	rg := g.Group("/reports/periods/:periodID")
	rg.GET("/teachers/:cedula/composite", api.teacherComposite)
	rg.GET("/participation", api.participation)
	rg.GET("/results", api.detailedResults)
}

// Handlers

func (api *evaluationApi) queryPeriods(ctx echo.Context) error {
	periods, err := api.academicRepo.QueryPeriods(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying periods")
	}
	if periods == nil {
		periods = []academic.Period{}
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *evaluationApi) createInstance(ctx echo.Context) error {
	var data evaluation.NewInstance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstance")
	}

	inst, err := api.svc.CreateInstance(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *evaluationApi) finalizeInstance(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	inst, err := api.svc.FinalizeInstance(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *evaluationApi) createAssignment(ctx echo.Context) error {
	var data evaluation.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	pa, err := api.svc.CreateAssignment(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, pa)
}

func (api *evaluationApi) submitResponses(ctx echo.Context) error {
	var data evaluation.SubmitResponses
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitResponses")
	}

	group, err := api.svc.SubmitResponses(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, group)
}

func (api *evaluationApi) setAuthorityScore(ctx echo.Context) error {
	var data evaluation.NewAuthorityScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAuthorityScore")
	}

	score, err := api.svc.SetAuthorityScore(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, score)
}

func (api *evaluationApi) sendReminders(ctx echo.Context) error {
	periodID, err := intParam(ctx, "periodID")
	if err != nil {
		return err
	}

	sent, err := api.svc.SendReminders(ctx.Request().Context(), periodID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sent": sent})
}

func (api *evaluationApi) teacherComposite(ctx echo.Context) error {
	periodID, err := intParam(ctx, "periodID")
	if err != nil {
		return err
	}

	res, err := api.svc.TeacherComposite(ctx.Request().Context(), periodID, ctx.Param("cedula"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *evaluationApi) participation(ctx echo.Context) error {
	periodID, err := intParam(ctx, "periodID")
	if err != nil {
		return err
	}

	report, err := api.svc.PeriodParticipation(ctx.Request().Context(), periodID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *evaluationApi) detailedResults(ctx echo.Context) error {
	periodID, err := intParam(ctx, "periodID")
	if err != nil {
		return err
	}

	results, err := api.svc.DetailedResults(ctx.Request().Context(), periodID)
	if err != nil {
		return err
	}
	if results == nil {
		results = []evaluation.TeacherResult{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func intParam(ctx echo.Context, name string) (int, error) {
	val, err := strconv.Atoi(ctx.Param(name))
	if err != nil || val < 1 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be a positive integer"})
	}
	return val, nil
}
