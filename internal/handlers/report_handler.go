package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/services/reports"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	reports *reports.Service
	log     *logrus.Logger
}

func NewReportHandler(reportSvc *reports.Service, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{reports: reportSvc, log: log}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	dash, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Dashboard retrieved", dash))
}

func (h *ReportHandler) DailySalesExport(c *gin.Context) {
	rows, total, err := h.reports.TodaySaleItems(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	f, err := reports.DailySalesWorkbook(rows, total)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	filename := fmt.Sprintf("daily-sales-%s.xlsx", time.Now().Format(dateLayout))
	h.streamWorkbook(c, f, filename)
}

func (h *ReportHandler) RangedSalesExport(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}

	rows, total, err := h.reports.SaleItemsByRange(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	f, err := reports.RangedSalesWorkbook(rows, total)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	filename := fmt.Sprintf("sales-%s-to-%s.xlsx", from.Format(dateLayout), to.Format(dateLayout))
	h.streamWorkbook(c, f, filename)
}

func (h *ReportHandler) DebtsExport(c *gin.Context) {
	debtors, total, err := h.reports.Debtors(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	f, err := reports.DebtsWorkbook(debtors, total)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	filename := fmt.Sprintf("debts-%s.xlsx", time.Now().Format(dateLayout))
	h.streamWorkbook(c, f, filename)
}

func (h *ReportHandler) DamagedExport(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}

	rows, total, err := h.reports.DamagedByRange(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	f, err := reports.DamagedWorkbook(rows, total)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	filename := fmt.Sprintf("damaged-%s-to-%s.xlsx", from.Format(dateLayout), to.Format(dateLayout))
	h.streamWorkbook(c, f, filename)
}

// rangeParams reads ?start and ?end. Missing values default to today so the
// export buttons work without a picker.
func (h *ReportHandler) rangeParams(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from, to := now, now

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			respondError(c, h.log, apperr.Validation("invalid start date %q, expected YYYY-MM-DD", raw))
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			respondError(c, h.log, apperr.Validation("invalid end date %q, expected YYYY-MM-DD", raw))
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if to.Before(from) {
		respondError(c, h.log, apperr.Validation("end date is before start date"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *ReportHandler) streamWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Type", reports.XLSXContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(c.Writer); err != nil {
		h.log.Errorf("workbook stream failed: %v", err)
	}
}
