package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/models"
)

// countingPrincipalRepo is an in-memory PrincipalRepository that counts
// lookups, so memoization is observable.
type countingPrincipalRepo struct {
	principals map[uint64]*models.Principal
	lookups    int
}

func (r *countingPrincipalRepo) Create(p *models.Principal) error { return nil }
func (r *countingPrincipalRepo) Update(p *models.Principal) error { return nil }
func (r *countingPrincipalRepo) FindByEmail(email string) (*models.Principal, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *countingPrincipalRepo) ListByTenant(tenantID uint64) ([]models.Principal, error) {
	return nil, nil
}

func (r *countingPrincipalRepo) FindByID(id uint64) (*models.Principal, error) {
	r.lookups++
	p, ok := r.principals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func newTestDirectory() (*Directory, *countingPrincipalRepo) {
	tenantA := uint64(1)
	repo := &countingPrincipalRepo{
		principals: map[uint64]*models.Principal{
			10: {ID: 10, Role: models.RoleMember, TenantID: &tenantA},
			11: {ID: 11, Role: models.RoleAdmin, TenantID: &tenantA},
			99: {ID: 99, Role: models.RoleSuperuser},
			66: {ID: 66, Role: models.RoleMember}, // invalid: no tenant
		},
	}
	return New(repo, nil), repo
}

func TestResolve(t *testing.T) {
	dir, _ := newTestDirectory()

	e, err := dir.Resolve(10)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleMember, e.Role)
	assert.Equal(t, uint64(1), *e.TenantID)

	e, err = dir.Resolve(99)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleSuperuser, e.Role)
	assert.Nil(t, e.TenantID)
}

func TestResolve_NotFound(t *testing.T) {
	dir, _ := newTestDirectory()

	_, err := dir.Resolve(12345)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestResolve_InvalidState(t *testing.T) {
	dir, _ := newTestDirectory()

	_, err := dir.Resolve(66)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestSessionMemoizesLookups(t *testing.T) {
	dir, repo := newTestDirectory()
	session := dir.NewSession()

	for i := 0; i < 5; i++ {
		_, err := session.Resolve(10)
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, repo.lookups, "single store lookup per principal per session")

	_, err := session.Resolve(11)
	assert.NoError(t, err)
	assert.Equal(t, 2, repo.lookups)

	// A fresh session does not share the cache.
	_, err = dir.NewSession().Resolve(10)
	assert.NoError(t, err)
	assert.Equal(t, 3, repo.lookups)
}

func TestBelongsTo(t *testing.T) {
	dir, _ := newTestDirectory()
	session := dir.NewSession()

	ok, err := session.BelongsTo(10, 1)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = session.BelongsTo(10, 2)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = session.BelongsTo(99, 2)
	assert.NoError(t, err)
	assert.True(t, ok, "superuser belongs to every tenant")
}

func TestPrincipalContext(t *testing.T) {
	dir, _ := newTestDirectory()
	session := dir.NewSession()

	p, err := session.PrincipalContext(11)
	assert.NoError(t, err)
	assert.Equal(t, uint64(11), p.ID)
	assert.Equal(t, models.RoleAdmin, p.Role)
	assert.Equal(t, uint64(1), *p.TenantID)
}
