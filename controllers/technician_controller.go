package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weba-hub/weba-hub-api/config"
	"github.com/weba-hub/weba-hub-api/services"
)

// parseDiscoveryQuery builds a discovery query from the request's query
// string. Latitude and longitude only count as a location when both parse.
func parseDiscoveryQuery(c *gin.Context) (services.DiscoveryQuery, error) {
	query := services.DiscoveryQuery{
		SubService:   c.Query("subService"),
		Category:     c.Query("category"),
		DistanceTier: c.DefaultQuery("distanceTier", "5-10"),
	}

	latStr := c.Query("lat")
	lngStr := c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return query, fmt.Errorf("invalid latitude %q", latStr)
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return query, fmt.Errorf("invalid longitude %q", lngStr)
		}
		query.Latitude = &lat
		query.Longitude = &lng
	}

	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			query.Page = page
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			query.PageSize = limit
		}
	}

	return query, nil
}

// FindTechniciansByService handles GET /api/v1/technicians/service - finds
// technicians for a sub-service, ranked by visibility tier and distance
func FindTechniciansByService(c *gin.Context) {
	query, err := parseDiscoveryQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_COORDINATES",
				"message": err.Error(),
			},
		})
		return
	}

	discovery := services.NewDiscoveryService(config.GetDB(), services.DefaultDiscoveryConfig())
	result, err := discovery.FindTechnicians(query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	maxDistance := services.DefaultDiscoveryConfig().RadiusForTier(query.DistanceTier)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"count":        len(result.Items),
		"totalCount":   result.TotalCount,
		"premiumCount": result.PremiumCount,
		"regularCount": result.RegularCount,
		"page":         result.Page,
		"totalPages":   result.TotalPages,
		"filters": gin.H{
			"subService":   query.SubService,
			"category":     query.Category,
			"distanceTier": query.DistanceTier,
			"maxDistance":  fmt.Sprintf("%g km", maxDistance/1000),
			"hasLocation":  result.HasDistance,
		},
		"technicians": result.Items,
	})
}

// GetTechnicianCountsByDistance handles GET /api/v1/technicians/counts -
// returns per-tier technician counts around a location, split into premium
// and regular
func GetTechnicianCountsByDistance(c *gin.Context) {
	query, err := parseDiscoveryQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_COORDINATES",
				"message": err.Error(),
			},
		})
		return
	}

	discovery := services.NewDiscoveryService(config.GetDB(), services.DefaultDiscoveryConfig())
	counts, breakdown, total, err := discovery.CountByDistanceTier(query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"location": gin.H{
			"lat": *query.Latitude,
			"lng": *query.Longitude,
		},
		"service":          query.SubService,
		"category":         query.Category,
		"counts":           counts,
		"breakdown":        breakdown,
		"totalTechnicians": total,
	})
}

// GetTechniciansBySubService handles GET /api/v1/technicians/subservice -
// older browse endpoint returning exact sub-service matches alongside
// related technicians in the same category
func GetTechniciansBySubService(c *gin.Context) {
	subService := c.Query("subService")
	category := c.Query("category")

	discovery := services.NewDiscoveryService(config.GetDB(), services.DefaultDiscoveryConfig())
	exact, related, err := discovery.FindRelatedTechnicians(category, subService)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"exactMatches":    exact,
		"relatedServices": related,
	})
}
