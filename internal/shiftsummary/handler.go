package shiftsummary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice-backend/internal/audit"
	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/cache"
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/pipeline"
	"backoffice-backend/internal/report"
	"backoffice-backend/internal/shift"
	"backoffice-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultListLimit = 31
	maxListLimit     = 366
	defaultRunsLimit = 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ProcessRequest struct {
	Date string `json:"date"` // "2025-06-01", empty for the current shift
}

// POST /api/shift-summaries/process
func ProcessHandler(p Processor, writeAudit audit.Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProcessRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}
		if body.Date == "" {
			body.Date = c.Query("date")
		}

		ctx := pipeline.WithTrigger(c.UserContext(), pipeline.TriggerManual)

		var (
			result *pipeline.ProcessingResult
			err    error
		)
		if body.Date == "" {
			result, err = p.ProcessCurrentShift(ctx)
		} else {
			date, perr := shift.ParseShiftDate(body.Date, p.Location())
			if perr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
			}
			result, err = p.ProcessShift(ctx, date)
		}
		if err != nil {
			return processFailure(c, result, err)
		}

		if writeAudit != nil {
			userID, userName, _ := auth.CurrentUser(c)
			aerr := writeAudit(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  audit.EntityShiftSummary,
				EntityKey:   result.ShiftDate,
				Action:      models.AuditActionProcess,
				Description: fmt.Sprintf("processed shift %s (run %s)", result.ShiftDate, result.RunID),
				After:       fiber.Map{"run_id": result.RunID, "receipts": result.ReceiptsProcessed, "errors": result.Errors},
			})
			if aerr != nil {
				config.LogError(config.GetLogger(), "shiftsummary", "ProcessHandler", "audit", result.ShiftDate, aerr)
			}
		}

		return c.JSON(fiber.Map{
			"success":        true,
			"summary":        result.Summary,
			"reconciliation": result.Report,
			"result":         result,
		})
	}
}

func processFailure(c *fiber.Ctx, result *pipeline.ProcessingResult, err error) error {
	status := fiber.StatusInternalServerError
	var upstream *pipeline.UpstreamFetchError
	switch {
	case errors.Is(err, pipeline.ErrAlreadyProcessing):
		status = fiber.StatusConflict
	case errors.As(err, &upstream):
		status = fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	}

	resp := fiber.Map{"success": false, "error": err.Error()}
	if result != nil {
		resp["result"] = result
	}
	return c.Status(status).JSON(resp)
}

// GET /api/shift-summaries/latest
func LatestHandler(s Store, summaries cache.SummaryCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := latest(c.UserContext(), s, summaries)
		if err != nil {
			return err
		}
		return c.JSON(stored)
	}
}

// GET /api/shift-summaries/latest/csv
func LatestCSVHandler(s Store, summaries cache.SummaryCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := latest(c.UserContext(), s, summaries)
		if err != nil {
			return err
		}
		return sendCSV(c, stored.Summary)
	}
}

func latest(ctx context.Context, s Store, summaries cache.SummaryCache) (*store.StoredSummary, error) {
	if summaries != nil {
		cached, ok, err := summaries.GetLatest(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "shiftsummary", "latest", "cache read", nil, err)
		}
		if ok {
			return &store.StoredSummary{
				Summary:   cached.Summary,
				Report:    cached.Report,
				Analysis:  cached.Analysis,
				LastRunID: cached.LastRunID,
				UpdatedAt: cached.UpdatedAt,
			}, nil
		}
	}
	stored, err := s.LatestSummary(ctx)
	if err != nil {
		return nil, storeError(err, "no shift summary has been processed yet")
	}
	return stored, nil
}

// GET /api/shift-summaries/:date
func GetHandler(s Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := findByParam(c, s)
		if err != nil {
			return err
		}
		return c.JSON(stored)
	}
}

// GET /api/shift-summaries/:date/csv
func CSVHandler(s Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := findByParam(c, s)
		if err != nil {
			return err
		}
		return sendCSV(c, stored.Summary)
	}
}

// GET /api/shift-summaries/:date/xlsx
func XLSXHandler(s Store, r Reconciler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := findByParam(c, s)
		if err != nil {
			return err
		}
		rep, err := reconcileStored(c.UserContext(), s, r, stored)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := report.WriteXLSX(&buf, stored.Summary, rep); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not render workbook")
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, attachment(stored.Summary.ShiftDate, "xlsx"))
		return c.Send(buf.Bytes())
	}
}

// GET /api/shift-summaries/:date/reconciliation
// The report is rebuilt from the stored summary and the current staff form,
// so a form corrected after processing is reflected immediately.
func ReconciliationHandler(s Store, r Reconciler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := findByParam(c, s)
		if err != nil {
			return err
		}
		rep, err := reconcileStored(c.UserContext(), s, r, stored)
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

func reconcileStored(ctx context.Context, s Store, r Reconciler, stored *store.StoredSummary) (*domain.ReconciliationReport, error) {
	form, err := s.FindStaffForm(ctx, stored.Summary.ShiftDate)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not load staff form")
	}
	return r.Reconcile(stored.Summary, form), nil
}

// GET /api/shift-summaries?from=2025-06-01&to=2025-06-30&limit=31
func ListHandler(s Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to := c.Query("from"), c.Query("to")
		for _, d := range []string{from, to} {
			if d == "" {
				continue
			}
			if _, err := time.Parse(shift.DateLayout, d); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from and to must be YYYY-MM-DD")
			}
		}
		if from != "" && to != "" && from > to {
			return fiber.NewError(fiber.StatusBadRequest, "from must not be after to")
		}

		limit := c.QueryInt("limit", defaultListLimit)
		if limit <= 0 || limit > maxListLimit {
			limit = defaultListLimit
		}

		list, err := s.ListSummaries(c.UserContext(), from, to, limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list shift summaries")
		}
		return c.JSON(list)
	}
}

// GET /api/shift-processing/status
func StatusHandler(p Processor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(p.Status())
	}
}

// GET /api/shift-processing/runs?limit=20
func RunsHandler(s Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", defaultRunsLimit)
		if limit <= 0 || limit > maxListLimit {
			limit = defaultRunsLimit
		}
		runs, err := s.RecentRuns(c.UserContext(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list processing runs")
		}
		return c.JSON(runs)
	}
}

func findByParam(c *fiber.Ctx, s Store) (*store.StoredSummary, error) {
	date := c.Params("date")
	if _, err := time.Parse(shift.DateLayout, date); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	stored, err := s.FindSummary(c.UserContext(), date)
	if err != nil {
		return nil, storeError(err, "no shift summary for "+date)
	}
	return stored, nil
}

func storeError(err error, notFoundMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "could not load shift summary")
}

func sendCSV(c *fiber.Ctx, s *domain.ShiftSummary) error {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, s); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not render csv")
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, attachment(s.ShiftDate, "csv"))
	return c.Send(buf.Bytes())
}

func attachment(shiftDate, ext string) string {
	return fmt.Sprintf(`attachment; filename="shift-summary-%s.%s"`, shiftDate, ext)
}
