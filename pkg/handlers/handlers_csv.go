package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// BuildRosterCSV handles spreadsheet-style CSV uploads for roster building:
// a people file, a roles file and an optional weights file, plus the date
// range as form fields. The finished schedule comes back as CSV.
func (h *Handler) BuildRosterCSV(c *gin.Context) {
	peopleFile, _ := c.FormFile("people_file")
	rolesFile, _ := c.FormFile("roles_file")
	weightsFile, _ := c.FormFile("weights_file")

	if peopleFile == nil || rolesFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "people_file and roles_file are required"})
		return
	}

	input := models.RosterInput{DaysPerPeriod: 7}
	var err error
	if input.StartDate, err = parseFormDate(c.PostForm("start_date")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	if input.EndDate, err = parseFormDate(c.PostForm("end_date")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}
	if raw := c.PostForm("days_per_period"); raw != "" {
		if input.DaysPerPeriod, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days_per_period"})
			return
		}
	}

	// Parse roles
	if err := readCSVFile(rolesFile, func(cols map[string]int, record []string) error {
		priority, _ := strconv.Atoi(record[cols["layout_priority"]])
		maximum, _ := strconv.Atoi(record[cols["maximum_wanted"]])
		input.Roles = append(input.Roles, models.RoleInput{
			Name:           record[cols["name"]],
			LayoutPriority: priority,
			MaximumWanted:  maximum,
		})
		return nil
	}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("roles file: %v", err)})
		return
	}

	// Parse people. File order becomes plan order, which is the engine's
	// tie-break, so keep it.
	byPerson := make(map[string]*models.AssignmentInput)
	var peopleOrder []string
	if err := readCSVFile(peopleFile, func(cols map[string]int, record []string) error {
		name := record[cols["name"]]
		a := &models.AssignmentInput{
			Person:  name,
			Weights: make(map[string]float64),
		}
		if idx, ok := cols["unit"]; ok {
			a.Availability.Unit = record[idx]
		}
		if idx, ok := cols["period"]; ok && record[idx] != "" {
			a.Availability.Period, _ = strconv.Atoi(record[idx])
		}
		if idx, ok := cols["window_weeks"]; ok && record[idx] != "" {
			a.Availability.WindowWeeks, _ = strconv.Atoi(record[idx])
		}
		// Shorthand: a roles column like "Sound:2|Guitar:1" seeds weights
		// without a separate weights file.
		if idx, ok := cols["roles"]; ok && record[idx] != "" {
			for _, part := range strings.Split(record[idx], "|") {
				roleName, weight := splitWeight(part)
				a.Weights[roleName] = weight
			}
		}
		if _, seen := byPerson[name]; !seen {
			peopleOrder = append(peopleOrder, name)
		}
		byPerson[name] = a
		return nil
	}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("people file: %v", err)})
		return
	}

	// Parse explicit weights, overriding any shorthand
	if weightsFile != nil {
		if err := readCSVFile(weightsFile, func(cols map[string]int, record []string) error {
			person := record[cols["person"]]
			a, ok := byPerson[person]
			if !ok {
				return fmt.Errorf("weight for unknown person %s", person)
			}
			weight, _ := strconv.ParseFloat(record[cols["weight"]], 64)
			a.Weights[record[cols["role"]]] = weight
			return nil
		}); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("weights file: %v", err)})
			return
		}
	}

	for _, name := range peopleOrder {
		input.Assignments = append(input.Assignments, *byPerson[name])
	}

	b, err := buildFromInput(&input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dates, err := b.scheduler.CreateSchedule()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	resp := b.shapeResponse(dates)
	h.RecordUsage(c, len(dates), totalPlacements(resp.Usage))

	// Export CSV: one row per date, one column per role
	var outCSV strings.Builder
	writer := csv.NewWriter(&outCSV)
	if len(dates) > 0 {
		header := dates[0].JSONFields(b.plan.Roles)
		writer.Write(header)
		for _, sad := range dates {
			row := sad.JSONResult(b.plan.Roles)
			record := make([]string, 0, len(header))
			for _, field := range header {
				record = append(record, fmt.Sprint(row[field]))
			}
			writer.Write(record)
		}
	}
	writer.Flush()

	c.JSON(http.StatusOK, gin.H{
		"csv":            outCSV.String(),
		"fairness_score": resp.FairnessScore,
		"warnings":       resp.Warnings,
	})
}

// readCSVFile opens an uploaded CSV, maps its header to column indexes and
// feeds every record to fn.
func readCSVFile(file *multipart.FileHeader, fn func(cols map[string]int, record []string) error) error {
	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("missing header: %w", err)
	}
	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if err := fn(cols, record); err != nil {
			return err
		}
	}
	return nil
}

func parseFormDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05Z", raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func splitWeight(part string) (string, float64) {
	if strings.Contains(part, ":") {
		pieces := strings.SplitN(part, ":", 2)
		weight, err := strconv.ParseFloat(strings.TrimSpace(pieces[1]), 64)
		if err != nil || weight <= 0 {
			weight = 1
		}
		return strings.TrimSpace(pieces[0]), weight
	}
	return strings.TrimSpace(part), 1
}
