package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/middleware"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/response"
)

// requireActor writes 401 and returns false when the request carries no authenticated caller.
func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return actor, true
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// pageParams reads page and page_size, leaving zero for the service defaults.
func pageParams(c *gin.Context) (int, int, error) {
	fields := map[string]string{}
	page, size := 0, 0
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			fields["page"] = "must be a positive integer"
		}
		page = v
	}
	raw := c.Query("page_size")
	if raw == "" {
		raw = c.Query("pageSize")
	}
	if raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			fields["page_size"] = "must be a positive integer"
		}
		size = v
	}
	if len(fields) > 0 {
		return 0, 0, appErrors.WithFields(appErrors.ErrValidation, "invalid pagination", fields)
	}
	return page, size, nil
}

func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, appErrors.WithFields(appErrors.ErrValidation, fmt.Sprintf("invalid %s filter", name), map[string]string{name: "must be true or false"})
	}
	return &v, nil
}
