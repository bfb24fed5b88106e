package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(rows int) Dataset {
	data := Dataset{Title: "Cycle history", Headers: []string{"start_date", "end_date", "symptoms"}}
	for i := 0; i < rows; i++ {
		data.Rows = append(data.Rows, map[string]string{
			"start_date": fmt.Sprintf("2024-%02d-05", i%12+1),
			"symptoms":   "cramps, fatigue",
		})
	}
	return data
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(2))
	require.NoError(t, err)
	assert.Equal(t, "start_date,end_date,symptoms\n2024-01-05,,\"cramps, fatigue\"\n2024-02-05,,\"cramps, fatigue\"\n", string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.ErrorIs(t, err, ErrNoHeaders)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.ErrorIs(t, err, ErrNoHeaders)
}

func TestPDFExporterRenderPaginates(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(80))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", NewPDFExporter().ContentType())
}
