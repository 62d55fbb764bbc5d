// Package staffform accepts the end-of-shift form staff fill in by hand.
package staffform

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"backoffice-backend/internal/audit"
	"backoffice-backend/internal/auth"
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/shift"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Store interface {
	FindStaffForm(ctx context.Context, shiftDate string) (*domain.StaffForm, error)
	UpsertStaffForm(ctx context.Context, form domain.StaffForm, submittedByID uint) (*domain.StaffForm, error)
}

// UpsertStaffFormRequest leaves a field null when staff did not fill it in.
type UpsertStaffFormRequest struct {
	ShiftDate     string   `json:"shift_date" validate:"required,datetime=2006-01-02"`
	StartingCash  *float64 `json:"starting_cash" validate:"omitempty,gte=0"`
	CashSales     *float64 `json:"cash_sales" validate:"omitempty,gte=0"`
	QRSales       *float64 `json:"qr_sales" validate:"omitempty,gte=0"`
	GrabSales     *float64 `json:"grab_sales" validate:"omitempty,gte=0"`
	OtherSales    *float64 `json:"other_sales" validate:"omitempty,gte=0"`
	TotalSales    *float64 `json:"total_sales" validate:"omitempty,gte=0"`
	TotalExpenses *float64 `json:"total_expenses" validate:"omitempty,gte=0"`
	EndingCash    *float64 `json:"ending_cash" validate:"omitempty,gte=0"`
	BurgerRolls   *int     `json:"burger_rolls" validate:"omitempty,gte=0"`
	MeatWeightKg  *float64 `json:"meat_weight_kg" validate:"omitempty,gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationErrors maps each failing field to the rule it broke.
func validationErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func (r UpsertStaffFormRequest) toDomain(submittedBy string, at time.Time) domain.StaffForm {
	return domain.StaffForm{
		ShiftDate:     r.ShiftDate,
		SubmittedBy:   submittedBy,
		SubmittedAt:   at,
		StartingCash:  money(r.StartingCash),
		CashSales:     money(r.CashSales),
		QRSales:       money(r.QRSales),
		GrabSales:     money(r.GrabSales),
		OtherSales:    money(r.OtherSales),
		TotalSales:    money(r.TotalSales),
		TotalExpenses: money(r.TotalExpenses),
		EndingCash:    money(r.EndingCash),
		BurgerRolls:   r.BurgerRolls,
		MeatWeightKg:  weight(r.MeatWeightKg),
	}
}

func money(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v).Round(2)
	return &d
}

func weight(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v).Round(3)
	return &d
}

// POST /api/staff-forms
func UpsertHandler(s Store, writeAudit audit.Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpsertStaffFormRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "validation failed",
				"fields": validationErrors(err),
			})
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		form := body.toDomain(userName, time.Now().UTC())
		previous, err := s.UpsertStaffForm(c.UserContext(), form, userID)
		if err != nil {
			config.LogError(config.GetLogger(), "staffform", "UpsertHandler", "UpsertStaffForm", form.ShiftDate, err)
			return fiber.NewError(fiber.StatusInternalServerError, "could not save staff form")
		}

		action, status := models.AuditActionCreate, fiber.StatusCreated
		if previous != nil {
			action, status = models.AuditActionUpdate, fiber.StatusOK
		}
		if writeAudit != nil {
			aerr := writeAudit(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  audit.EntityStaffForm,
				EntityKey:   form.ShiftDate,
				Action:      action,
				Description: fmt.Sprintf("staff form %s %s", form.ShiftDate, action),
				Before:      previous,
				After:       form,
			})
			if aerr != nil {
				config.LogError(config.GetLogger(), "staffform", "UpsertHandler", "audit", form.ShiftDate, aerr)
			}
		}

		return c.Status(status).JSON(form)
	}
}

// GET /api/staff-forms/:date
func GetHandler(s Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		date := c.Params("date")
		if _, err := time.Parse(shift.DateLayout, date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}

		form, err := s.FindStaffForm(c.UserContext(), date)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load staff form")
		}
		if form == nil {
			return fiber.NewError(fiber.StatusNotFound, "no staff form for "+date)
		}
		return c.JSON(form)
	}
}
