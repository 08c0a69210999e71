package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dukerupert/leadline/internal/model"
)

func sample() []model.Consultation {
	return []model.Consultation{
		{
			ID:                    2,
			Name:                  "Kim Minji",
			PhoneNumber:           "010-1234-5678",
			AgreedToPrivacyPolicy: true,
			CreatedAt:             time.Date(2026, 3, 1, 3, 4, 5, 0, time.UTC),
			Status:                model.StatusApproved,
		},
		{
			ID:          1,
			Name:        "Park Jisoo",
			PhoneNumber: "010-9999-0000",
			CreatedAt:   time.Date(2026, 2, 28, 23, 30, 0, 0, time.UTC),
		},
	}
}

func TestRows(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)

	rows := Rows(sample(), seoul)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Kim Minji", "010-1234-5678", "2026-03-01 12:04:05", "Yes", "approved"}, rows[0])
	assert.Equal(t, []string{"Park Jisoo", "010-9999-0000", "2026-03-01 08:30:00", "No", "pending"}, rows[1])
}

func TestRowsNilLocationIsUTC(t *testing.T) {
	rows := Rows(sample()[:1], nil)

	assert.Equal(t, "2026-03-01 03:04:05", rows[0][2])
}

func TestConsultationsWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Consultations(&buf, sample(), time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Kim Minji", rows[1][0])
	assert.Equal(t, "Park Jisoo", rows[2][0])
	assert.Equal(t, "pending", rows[2][4])
}

func TestConsultationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Consultations(&buf, nil, time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Header}, rows)
}
