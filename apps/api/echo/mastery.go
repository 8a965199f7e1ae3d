package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/mastery"
)

type masteryApi struct {
	svc      mastery.ServiceInterface
	validate *validator.Validate
}

func registerMasteryAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := masteryApi{
		svc:      deps.MasterySvc,
		validate: deps.Validate,
	}

	mg := g.Group("/mastery", jwt)
	mg.GET("/:userId", api.queryByUser)
	mg.POST("/update", api.updateMastery)

	pg := g.Group("/progress", jwt)
	pg.GET("/:userId", api.progress)
	pg.POST("/update", api.updateProgress)
}

// Handlers

func (api *masteryApi) queryByUser(ctx echo.Context) error {
	recs, err := api.svc.QueryByUser(ctx.Request().Context(), ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "querying mastery by user")
	}
	if recs == nil {
		recs = []mastery.Mastery{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *masteryApi) updateMastery(ctx echo.Context) error {
	var data mastery.UpdateMastery
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMastery")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.UpdateMastery(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating mastery")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *masteryApi) progress(ctx echo.Context) error {
	prog, err := api.svc.GetProgress(ctx.Request().Context(), ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "getting progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *masteryApi) updateProgress(ctx echo.Context) error {
	var data mastery.UpdateProgress
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgress")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prog, err := api.svc.UpdateProgress(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}
