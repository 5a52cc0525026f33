package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// ValidateInput handles the JSON-based validation request: a structural
// check of a roster payload without running the build.
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.RosterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Roles) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one role is required",
		})
		return
	}

	if len(input.Assignments) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one assignment is required",
		})
		return
	}

	if input.DaysPerPeriod <= 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "days_per_period must be positive",
		})
		return
	}

	if !input.EndDate.After(input.StartDate) {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "end_date must be after start_date",
		})
		return
	}

	// Duplicate names would make every cross-reference ambiguous
	roleNames := make(map[string]bool)
	for _, r := range input.Roles {
		if roleNames[r.Name] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate role: " + r.Name})
			return
		}
		roleNames[r.Name] = true
	}

	peopleNames := make(map[string]bool)
	for _, a := range input.Assignments {
		if peopleNames[a.Person] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate person: " + a.Person})
			return
		}
		peopleNames[a.Person] = true

		if len(a.Weights) == 0 && len(a.SpecificDates) == 0 {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": a.Person + " has no weighted roles"})
			return
		}
		for roleName := range a.Weights {
			if !roleNames[roleName] {
				c.JSON(http.StatusOK, gin.H{"valid": false, "error": a.Person + " references unknown role " + roleName})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"role_count":       len(input.Roles),
			"assignment_count": len(input.Assignments),
		},
	})
}
