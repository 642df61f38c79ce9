package officer

import (
	"testing"

	"github.com/jingxin-guardian/core/internal/models"
	"github.com/jingxin-guardian/core/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	db := testutil.NewDB(t, &models.PersonalInfoModel{})
	return NewService(db), db
}

func TestSaveAndGet(t *testing.T) {
	s, _ := newService(t)

	info := &models.PersonalInfoModel{
		PoliceID:   "110234",
		Name:       "张伟",
		Department: "特警支队",
		Family: []models.FamilyMember{
			{ID: "f1", Name: "李娜", Relation: "配偶", Job: "教师"},
		},
	}
	require.NoError(t, s.Save(info))

	got, err := s.Get("110234")
	require.NoError(t, err)
	assert.Equal(t, "张伟", got.Name)
	require.Len(t, got.Family, 1)
	assert.Equal(t, "配偶", got.Family[0].Relation)
}

func TestSaveReplacesWholeRecord(t *testing.T) {
	s, db := newService(t)

	require.NoError(t, s.Save(&models.PersonalInfoModel{
		PoliceID: "110234", Name: "张伟", Phone: "13800138000",
		Family: []models.FamilyMember{{ID: "f1", Name: "李娜"}},
	}))
	require.NoError(t, s.Save(&models.PersonalInfoModel{
		PoliceID: "110234", Name: "张伟", Department: "巡特警大队",
	}))

	got, err := s.Get("110234")
	require.NoError(t, err)
	assert.Equal(t, "巡特警大队", got.Department)
	assert.Empty(t, got.Phone, "unsubmitted fields are cleared, not merged")
	assert.Empty(t, got.Family)

	var count int64
	require.NoError(t, db.Model(&models.PersonalInfoModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSaveRequiresPoliceID(t *testing.T) {
	s, _ := newService(t)
	assert.ErrorIs(t, s.Save(&models.PersonalInfoModel{Name: "张伟"}), ErrMissingPoliceID)
}

func TestGetUnknown(t *testing.T) {
	s, _ := newService(t)
	_, err := s.Get("999999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEnsureExists(t *testing.T) {
	s, db := newService(t)

	created, err := EnsureExists(db, "220118", "王强")
	require.NoError(t, err)
	assert.True(t, created)

	got, err := s.Get("220118")
	require.NoError(t, err)
	assert.Equal(t, "基层科所队", got.Department)
	assert.Equal(t, "待定", got.Position)
	assert.Equal(t, "男", got.Gender)

	created, err = EnsureExists(db, "220118", "王强")
	require.NoError(t, err)
	assert.False(t, created, "existing records are left untouched")
}
