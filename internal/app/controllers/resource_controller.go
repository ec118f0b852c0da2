package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unirecords/internal/app/models"
	"github.com/yigit/unirecords/internal/app/models/dto"
	"github.com/yigit/unirecords/internal/app/services"
	"github.com/yigit/unirecords/internal/pkg/apperrors"
	"github.com/yigit/unirecords/internal/pkg/fieldmap"
	"github.com/yigit/unirecords/internal/pkg/querylog"
)

// KeyParam is the route parameter holding a resource key.
const KeyParam = "key"

// ResourceController handles the five CRUD endpoints of one resource. Its
// methods match middleware.HandlerFunc.
type ResourceController struct {
	service *services.ResourceService
	schema  models.Schema
}

// NewResourceController creates a controller over service.
func NewResourceController(service *services.ResourceService) *ResourceController {
	return &ResourceController{
		service: service,
		schema:  service.Schema(),
	}
}

// Schema returns the schema of the resource.
func (rc *ResourceController) Schema() models.Schema {
	return rc.schema
}

// List handles GET /api/<plural>/
func (rc *ResourceController) List(c *gin.Context, session *querylog.Session) (int, any, error) {
	records, err := rc.service.List(c.Request.Context(), session)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, records, nil
}

// Get handles GET /api/<plural>/:key
func (rc *ResourceController) Get(c *gin.Context, session *querylog.Session) (int, any, error) {
	key, err := rc.parseKey(c)
	if err != nil {
		return 0, nil, err
	}

	record, err := rc.service.Get(c.Request.Context(), session, key)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, record, nil
}

// Create handles POST /api/<plural>/
func (rc *ResourceController) Create(c *gin.Context, session *querylog.Session) (int, any, error) {
	input, err := bindObject(c)
	if err != nil {
		return 0, nil, err
	}

	record, err := rc.service.Create(c.Request.Context(), session, input)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, record, nil
}

// Update handles PUT /api/<plural>/:key
func (rc *ResourceController) Update(c *gin.Context, session *querylog.Session) (int, any, error) {
	key, err := rc.parseKey(c)
	if err != nil {
		return 0, nil, err
	}

	input, err := bindObject(c)
	if err != nil {
		return 0, nil, err
	}

	record, err := rc.service.Update(c.Request.Context(), session, key, input)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, record, nil
}

// Delete handles DELETE /api/<plural>/:key
func (rc *ResourceController) Delete(c *gin.Context, session *querylog.Session) (int, any, error) {
	key, err := rc.parseKey(c)
	if err != nil {
		return 0, nil, err
	}

	if err := rc.service.Delete(c.Request.Context(), session, key); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, dto.SuccessResponse{Message: rc.schema.DeletedMessage()}, nil
}

// parseKey reads the key parameter. An integer key that does not parse can
// never match a row, so it is reported as not found.
func (rc *ResourceController) parseKey(c *gin.Context) (any, error) {
	raw := c.Param(KeyParam)
	if rc.schema.Key.Kind != fieldmap.Integer {
		return raw, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewResourceNotFoundError(rc.schema.NotFoundMessage())
	}
	return id, nil
}

// bindObject decodes the request body as a JSON object. An empty body or a
// JSON null yields a nil map; anything that is not an object is rejected.
func bindObject(c *gin.Context) (map[string]any, error) {
	if c.Request.Body == nil {
		return nil, nil
	}

	var input map[string]any
	if err := c.ShouldBindJSON(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, apperrors.NewBadRequestError(apperrors.MsgInvalidBody)
	}
	return input, nil
}
