package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/dashboard"
)

type dashboardApi struct {
	svc dashboard.ServiceInterface
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{svc: deps.DashSvc}

	dg := g.Group("/dashboard", jwt)
	dg.GET("/student/:userId", api.student)
	dg.GET("/teacher/:userId", api.teacher)
}

// Handlers

func (api *dashboardApi) student(ctx echo.Context) error {
	dash, err := api.svc.Student(ctx.Request().Context(), ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "building student dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *dashboardApi) teacher(ctx echo.Context) error {
	dash, err := api.svc.Teacher(ctx.Request().Context(), ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "building teacher dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}
