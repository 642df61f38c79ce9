package dashboard

import (
	"testing"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	db := testutil.NewDB(t,
		&models.PersonalInfoModel{}, &models.ExamReportModel{},
		&models.PsychTestReportModel{}, &models.TalkRecordModel{})
	return NewService(db), db
}

func TestStatsEmpty(t *testing.T) {
	s, _ := newService(t)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOfficers)
	assert.Zero(t, stats.FlaggedOfficers)
	assert.Empty(t, stats.FlaggedRecords)
}

func TestStatsCountsAndFlags(t *testing.T) {
	s, db := newService(t)

	for _, id := range []string{"110234", "220118", "330501"} {
		require.NoError(t, db.Create(&models.PersonalInfoModel{PoliceID: id, Name: "民警" + id}).Error)
	}
	require.NoError(t, db.Create(&models.ExamReportModel{PoliceID: "110234"}).Error)
	require.NoError(t, db.Create(&models.PsychTestReportModel{PoliceID: "110234"}).Error)

	// Two flagged records for the same officer plus one clean record.
	require.NoError(t, db.Create(&models.TalkRecordModel{PoliceID: "110234", HasDebt: true}).Error)
	require.NoError(t, db.Create(&models.TalkRecordModel{PoliceID: "110234", HasMentalIssue: true}).Error)
	require.NoError(t, db.Create(&models.TalkRecordModel{PoliceID: "220118"}).Error)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalOfficers)
	assert.EqualValues(t, 1, stats.FlaggedOfficers, "flagged officers are counted once, not per record")
	assert.EqualValues(t, 2, stats.StableOfficers)
	assert.EqualValues(t, 1, stats.ExamReports)
	assert.EqualValues(t, 1, stats.PsychReports)
	assert.EqualValues(t, 3, stats.TalkRecords)
	assert.Len(t, stats.FlaggedRecords, 2)
}
