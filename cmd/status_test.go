package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zlv-data/geolink/internal/locprop"
)

func TestFormatStatusReport(t *testing.T) {
	var buf bytes.Buffer
	formatStatusReport(&buf, &locprop.StatusReport{
		Total:        200,
		Resolved:     150,
		WithDistance: 120,
		Classes: []locprop.ClassCount{
			{Class: 1, Count: 100},
			{Class: 5, Count: 50},
		},
		Departments: []locprop.DepartmentCount{
			{Department: "75", Count: 90},
			{Department: "971", Count: 40},
			{Department: "972", Count: 20},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "200 total, 150 resolved (75.0%)")
	assert.Contains(t, out, "120 with distance")
	assert.Contains(t, out, "same commune")
	assert.Contains(t, out, "overseas France")
	// Overseas departments stay distinct.
	assert.Contains(t, out, "971")
	assert.Contains(t, out, "972")
}

func TestFormatStatusReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatStatusReport(&buf, &locprop.StatusReport{})

	out := buf.String()
	assert.Contains(t, out, "0 total, 0 resolved")
	assert.NotContains(t, out, "Class distribution")
	assert.NotContains(t, out, "Top owner departments")
}
