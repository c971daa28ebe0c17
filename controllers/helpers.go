package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotel-pms/middleware"
	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

func actorFrom(c *gin.Context) (services.ActorContext, bool) {
	return middleware.Actor(c)
}

// requireActor aborts with 401 when the route was mounted without auth.
func requireActor(c *gin.Context) (services.ActorContext, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return actor, false
	}
	return actor, true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(c.Query(name)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return fallback
	}
	return v
}

// queryTime accepts RFC3339 or a plain YYYY-MM-DD date (UTC midnight).
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	utils.Error(c, http.StatusBadRequest, "INVALID_DATE", name+" must be RFC3339 or YYYY-MM-DD")
	return nil, false
}
