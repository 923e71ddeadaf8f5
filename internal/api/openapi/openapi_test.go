package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DocumentIsValid(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	for _, path := range []string{
		"/auth/login",
		"/machines/{id}/status",
		"/production/work-orders/{id}",
		"/quality/scrap/summary",
		"/maintenance/emulsion/latest",
		"/dashboard/capacity/plants/{id}",
		"/employees/{id}",
		"/admin/log-level",
	} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}

	for _, name := range []string{"ErrorBody", "Machine", "WorkOrder", "ScrapSummary", "MaintenanceTask", "Overview"} {
		assert.Contains(t, doc.Components.Schemas, name)
	}
}

func TestLoad_LiteralPathsMatchBeforeTemplates(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	order := doc.Paths.InMatchingOrder()
	index := func(p string) int {
		for i, o := range order {
			if o == p {
				return i
			}
		}
		return -1
	}
	assert.Less(t, index("/quality/scrap/codes"), index("/quality/scrap/{id}"))
	assert.Less(t, index("/machines/stats"), index("/machines/{id}"))
}
