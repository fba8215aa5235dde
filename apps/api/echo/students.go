package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/core/student"
)

type studentApi struct {
	svc      student.ServiceInterface
	validate *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	operator echo.MiddlewareFunc,
	svc student.ServiceInterface,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/students", jwt, operator)
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	dg := sg.Group("/:id", objectMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	ordering, err := bindOrdering(ctx)
	if err != nil {
		return err
	}

	all, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(all))
	for _, s := range all {
		if filter.Match(s) {
			students = append(students, s)
		}
	}
	ordering.Sort(students)
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.Form
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Form")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := contextObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, err := contextObject(ctx)
	if err != nil {
		return err
	}

	data := student.FormFrom(s)
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Form")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err = api.svc.Update(ctx.Request().Context(), s.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := contextObject(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

var (
	objectContextKey    = "object"
	errObjNotFoundInCtx = errors.New("student object not found in echo.Context")
)

func contextObject(ctx echo.Context) (student.Student, error) {
	s, ok := ctx.Get(objectContextKey).(student.Student)
	if !ok {
		return student.Student{}, errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return s, nil
}

// objectMiddleware loads the student of the ":id" param into the context.
func objectMiddleware(svc student.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil {
				return errHttpNotFound
			}
			s, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding student by ID")
			}
			ctx.Set(objectContextKey, s)
			return next(ctx)
		}
	}
}
