package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"route_dispatch/internal/config"
	"route_dispatch/internal/importer"
	"route_dispatch/internal/metrics"
	"route_dispatch/internal/models"
)

// sequenceTracker hands out stop sequences for one route during an import,
// seeded with the sequences its live stops already hold so a re-import cannot
// collide with them.
type sequenceTracker struct {
	used map[int]bool
	max  int
}

func newSequenceTracker(existing []int) *sequenceTracker {
	t := &sequenceTracker{used: make(map[int]bool)}
	for _, s := range existing {
		t.used[s] = true
		if s > t.max {
			t.max = s
		}
	}
	return t
}

// claim reserves an explicit sheet sequence, reporting whether it was free.
func (t *sequenceTracker) claim(seq int) bool {
	if t.used[seq] {
		return false
	}
	t.used[seq] = true
	if seq > t.max {
		t.max = seq
	}
	return true
}

// next allocates the lowest free sequence above the current maximum.
func (t *sequenceTracker) next() int {
	t.max++
	for t.used[t.max] {
		t.max++
	}
	t.used[t.max] = true
	return t.max
}

// ImportRoutes ingests an uploaded xlsx in the producer's column layout.
// Routes are created per (route number, date); customers are created by
// name when absent; stops carry the column-C driver name as their
// assignment hint. Bad rows are reported and skipped, good rows land.
func ImportRoutes(c *gin.Context) {
	dateStr := c.PostForm("date")
	date, err := parseRouteDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "spreadsheet file required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		logrus.WithError(err).Error("import: open upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	defer f.Close()

	rows, rowErrs, err := importer.Parse(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	imported := 0
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		routeIDs := make(map[string]uint)
		sequences := make(map[uint]*sequenceTracker)

		for _, row := range rows {
			routeID, ok := routeIDs[row.RouteNumber]
			if !ok {
				var route models.Route
				err := tx.Where("route_number = ? AND DATE(date) = ? AND is_deleted = ?",
					row.RouteNumber, date.Format("2006-01-02"), false).
					First(&route).Error
				if err == gorm.ErrRecordNotFound {
					route = models.Route{
						RouteNumber: row.RouteNumber,
						Date:        date,
						Status:      models.RoutePending,
					}
					if err := tx.Create(&route).Error; err != nil {
						return err
					}
				} else if err != nil {
					return err
				}
				routeID = route.ID
				routeIDs[row.RouteNumber] = routeID

				var existing []int
				if err := tx.Model(&models.Stop{}).
					Where("route_id = ? AND is_deleted = ?", routeID, false).
					Pluck("sequence", &existing).Error; err != nil {
					return err
				}
				sequences[routeID] = newSequenceTracker(existing)
			}

			var customer models.Customer
			err := tx.Where("name = ? AND is_deleted = ?", row.CustomerName, false).
				First(&customer).Error
			if err == gorm.ErrRecordNotFound {
				if nameLooksLikeEmail(row.CustomerName) {
					rowErrs = append(rowErrs, importer.RowError{
						Line: row.Line,
						Err:  fmt.Errorf("customer name %q contains an email address", row.CustomerName),
					})
					continue
				}
				customer = models.Customer{
					Name:        row.CustomerName,
					Address:     row.Address,
					ContactInfo: row.ContactInfo,
				}
				if err := tx.Create(&customer).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			seq := row.Sequence
			if seq == 0 {
				seq = sequences[routeID].next()
			} else if !sequences[routeID].claim(seq) {
				rowErrs = append(rowErrs, importer.RowError{
					Line: row.Line,
					Err:  fmt.Errorf("sequence %d already used on route %s", seq, row.RouteNumber),
				})
				continue
			}

			stop := models.Stop{
				RouteID:              routeID,
				CustomerID:           customer.ID,
				Sequence:             seq,
				Status:               models.StopPending,
				DriverNameFromUpload: row.DriverName,
				Address:              row.Address,
				Notes:                row.Notes,
				Amount:               row.Amount,
				IsCOD:                row.IsCOD,
			}
			if err := tx.Create(&stop).Error; err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("import: transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	metrics.ImportedRows.WithLabelValues("ok").Add(float64(imported))
	metrics.ImportedRows.WithLabelValues("rejected").Add(float64(len(rowErrs)))

	errLines := make([]int, 0, len(rowErrs))
	for _, re := range rowErrs {
		errLines = append(errLines, re.Line)
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "import complete",
		"imported":       imported,
		"rejected_lines": errLines,
	})
}

// ExportRoute writes a route back out as xlsx in the same column layout
// the importer reads.
func ExportRoute(c *gin.Context) {
	route, ok := loadRoute(c)
	if !ok {
		return
	}

	driverName := ""
	if route.Driver != nil {
		driverName = route.Driver.FullName
	}

	rows := make([]importer.ExportRow, 0, len(route.Stops))
	for _, s := range route.Stops {
		name := driverName
		if s.DriverNameFromUpload != "" {
			name = s.DriverNameFromUpload
		}
		rows = append(rows, importer.ExportRow{
			RouteNumber:  route.RouteNumber,
			Sequence:     s.Sequence,
			DriverName:   name,
			Address:      s.Address,
			ContactInfo:  s.Customer.ContactInfo,
			CustomerName: s.Customer.Name,
			Amount:       s.Amount,
			IsCOD:        s.IsCOD,
			Notes:        s.Notes,
		})
	}

	f, err := importer.Export(rows)
	if err != nil {
		logrus.WithError(err).Error("export: build failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	fileName := "route_" + route.RouteNumber + "_" + route.Date.Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	if err := f.Write(c.Writer); err != nil {
		logrus.WithError(err).Error("export: write failed")
	}
}
