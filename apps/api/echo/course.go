package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

type courseApi struct {
	svc      course.ServiceInterface
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, teacherMiddleware())
	cg.GET("", api.queryByTeacher)
	cg.GET("/available", api.queryAvailable)
	cg.GET("/enrolled/:studentId", api.queryEnrolled)
	cg.POST("/join", api.join)
	cg.DELETE("/:id", api.destroy, teacherMiddleware())
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) queryByTeacher(ctx echo.Context) error {
	teacherID := ctx.QueryParam("teacherId")
	if teacherID == "" {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		teacherID = claims.Subject
	}

	courses, err := api.svc.QueryByTeacher(ctx.Request().Context(), teacherID)
	if err != nil {
		return errors.Wrap(err, "querying courses by teacher")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) queryAvailable(ctx echo.Context) error {
	courses, err := api.svc.QueryAvailable(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying available courses")
	}
	if courses == nil {
		courses = []course.AvailableCourse{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) queryEnrolled(ctx echo.Context) error {
	courses, err := api.svc.QueryEnrolled(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "querying enrolled courses")
	}
	if courses == nil {
		courses = []course.EnrolledCourse{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) join(ctx echo.Context) error {
	var data course.JoinCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinCourse")
	}
	if data.StudentID == "" {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		data.StudentID = claims.Subject
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	summary, err := api.svc.Join(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "joining course")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}
