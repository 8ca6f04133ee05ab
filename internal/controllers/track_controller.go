package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"route_dispatch/internal/config"
	"route_dispatch/internal/models"
)

// ListDriverLocations returns a slice of the append-only location log for
// one driver, newest first, optionally bounded by a since timestamp.
func ListDriverLocations(c *gin.Context) {
	driverID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid driver id"})
		return
	}

	q := config.DB.Where("driver_id = ?", driverID)
	if since := c.Query("since"); since != "" {
		q = q.Where("timestamp >= ?", since)
	}

	var locations []models.DriverLocation
	if err := q.Order("timestamp DESC").Limit(500).Find(&locations).Error; err != nil {
		logrus.WithError(err).Error("list locations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": locations})
}

// GetDriverTrack renders one day of a driver's location log as a GeoJSON
// LineString for the dispatch map.
func GetDriverTrack(c *gin.Context) {
	driverID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid driver id"})
		return
	}
	date := c.Query("date")
	if date != "" {
		if _, err := parseRouteDate(date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
			return
		}
	}

	q := config.DB.Where("driver_id = ?", driverID)
	if date != "" {
		q = q.Where("DATE(timestamp) = ?", date)
	}

	var locations []models.DriverLocation
	if err := q.Order("timestamp ASC").Find(&locations).Error; err != nil {
		logrus.WithError(err).Error("track query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if len(locations) < 2 {
		c.JSON(http.StatusNotFound, gin.H{"message": "not enough location points for a track"})
		return
	}

	coords := make([]geom.Coord, 0, len(locations))
	for _, loc := range locations {
		coords = append(coords, geom.Coord{loc.Longitude, loc.Latitude})
	}
	line := geom.NewLineString(geom.XY).MustSetCoords(coords).SetSRID(4326)

	raw, err := gjson.Marshal(line)
	if err != nil {
		logrus.WithError(err).Error("track geojson encode failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"driver_id": driverID,
		"points":    len(locations),
		"track":     json.RawMessage(raw),
	})
}
