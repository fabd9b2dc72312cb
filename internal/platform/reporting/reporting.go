// Package reporting evaluates aggregate measures over stored cases and
// renders tabular results as XLSX workbooks.
package reporting

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/limbsalvage/clti/internal/platform/auth"
)

// MeasureDefinition defines a reporting measure with its SQL query.
// Parameters are bound positionally, in order, as $1..$n.
type MeasureDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SQL         string   `json:"sql"`
	Parameters  []string `json:"parameters"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
	Parameters  map[string]string        `json:"parameters,omitempty"`
}

// PredefinedMeasures is the list of available reporting measures.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "case-count",
		Name:        "Case Count",
		Description: "Total number of stored cases and how many were declared unsalvageable",
		SQL:         `SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN clinical_stage = 5 THEN 1 ELSE 0 END), 0) AS unsalvageable FROM clti_case`,
		Parameters:  []string{},
	},
	{
		ID:          "cases-by-clinical-stage",
		Name:        "Cases by WIfI Clinical Stage",
		Description: "Number of stored cases grouped by WIfI clinical stage",
		SQL:         `SELECT COALESCE(clinical_stage::text, 'undetermined') AS clinical_stage, COUNT(*) AS total FROM clti_case GROUP BY clinical_stage ORDER BY clinical_stage`,
		Parameters:  []string{},
	},
	{
		ID:          "cases-by-amputation-risk",
		Name:        "Cases by Amputation Risk",
		Description: "Number of stored cases grouped by one-year amputation risk",
		SQL:         `SELECT amputation_risk, COUNT(*) AS total FROM clti_case GROUP BY amputation_risk ORDER BY total DESC`,
		Parameters:  []string{},
	},
	{
		ID:          "cases-by-method",
		Name:        "Cases by Recommended Method",
		Description: "Number of stored cases grouped by GLASS stage and recommended revascularization method",
		SQL:         `SELECT glass_stage, recommended_method, COUNT(*) AS total FROM clti_case GROUP BY glass_stage, recommended_method ORDER BY glass_stage, total DESC`,
		Parameters:  []string{},
	},
	{
		ID:          "cases-updated-since",
		Name:        "Cases Updated Since",
		Description: "Stored cases updated on or after the given date (YYYY-MM-DD)",
		SQL:         `SELECT id, label, clinical_stage, amputation_risk, glass_stage, recommended_method, updated_at FROM clti_case WHERE updated_at >= $1::date ORDER BY updated_at DESC`,
		Parameters:  []string{"since"},
	},
}

// Querier is the subset of pgxpool.Pool used by the handler.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	db Querier
}

// NewHandler creates a new reporting handler.
func NewHandler(db Querier) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	reportGroup := api.Group("/reports", auth.RequireRole("admin", "physician"))
	reportGroup.GET("/measures", h.ListMeasures)
	reportGroup.GET("/measures/:id/evaluate", h.EvaluateMeasure)
	reportGroup.GET("/measures/:id/export.xlsx", h.ExportMeasure)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

func (h *Handler) evaluate(c echo.Context) (*MeasureReport, error) {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}

	params := map[string]string{}
	args := make([]interface{}, 0, len(measure.Parameters))
	for _, p := range measure.Parameters {
		v := c.QueryParam(p)
		if v == "" {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("missing parameter: %s", p))
		}
		params[p] = v
		args = append(args, v)
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL, args...)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}

	return &MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     results,
		Parameters:  params,
	}, nil
}

// EvaluateMeasure executes a measure's SQL and returns the results.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	report, err := h.evaluate(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// ExportMeasure evaluates a measure and returns it as a one-sheet workbook.
func (h *Handler) ExportMeasure(c echo.Context) error {
	report, err := h.evaluate(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, report.Sheet()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s.xlsx"`, report.MeasureID))
	return c.Blob(http.StatusOK, XLSXContentType, buf.Bytes())
}

// Sheet lays the report results out as a sheet with one column per result
// field, sorted by name.
func (r *MeasureReport) Sheet() Sheet {
	cols := map[string]struct{}{}
	for _, row := range r.Results {
		for k := range row {
			cols[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(cols))
	for k := range cols {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	rows := make([][]interface{}, 0, len(r.Results))
	for _, res := range r.Results {
		row := make([]interface{}, len(headers))
		for i, h := range headers {
			row[i] = res[h]
		}
		rows = append(rows, row)
	}
	return Sheet{Name: r.MeasureName, Headers: headers, Rows: rows}
}

// executeSQL runs a SQL query and returns results as a slice of maps.
func (h *Handler) executeSQL(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := h.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	var results []map[string]interface{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			row[fd.Name] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if results == nil {
		results = []map[string]interface{}{}
	}

	return results, nil
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}
