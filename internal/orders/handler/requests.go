package handler

import (
	"net/url"
	"strconv"
	"strings"

	"farmshop/internal/orders/models"
	dErrors "farmshop/pkg/domain-errors"
)

const maxAdminLimit = 500

// StatusRequest is the body of PATCH /admin/orders/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`

	status models.Status
}

func (r *StatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.status = status
	return nil
}

// parseAdminFilter reads ?status=&q=&limit= from the admin list query.
func parseAdminFilter(q url.Values) (models.AdminFilter, error) {
	var filter models.AdminFilter
	if raw := strings.TrimSpace(q.Get("status")); raw != "" && raw != "all" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "unknown status filter")
		}
		filter.Status = status
	}
	filter.Query = strings.TrimSpace(q.Get("q"))
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
		}
		filter.Limit = min(limit, maxAdminLimit)
	}
	return filter, nil
}
