package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

type ProjectServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProjectService

	acmeID   uint64
	globexID uint64

	acmeAdmin   authz.Principal
	acmeMember  authz.Principal
	globexAdmin authz.Principal
	superuser   authz.Principal
}

func (suite *ProjectServiceTestSuite) SetupTest() {
	suite.db = openTestDB(&suite.Suite)
	suite.service = NewProjectService(
		repository.NewProjectRepository(suite.db),
		authz.NewEngine(nil),
		nil,
		nil,
	)

	suite.acmeID = suite.createTenant("Acme")
	suite.globexID = suite.createTenant("Globex")

	suite.acmeAdmin = suite.createPrincipal("admin@acme.test", suite.acmeID, models.RoleAdmin)
	suite.acmeMember = suite.createPrincipal("member@acme.test", suite.acmeID, models.RoleMember)
	suite.globexAdmin = suite.createPrincipal("admin@globex.test", suite.globexID, models.RoleAdmin)

	root := &models.Principal{Email: "root@taskflow.test", PasswordHash: "x", Role: models.RoleSuperuser}
	suite.Require().NoError(suite.db.Create(root).Error)
	suite.superuser = authz.Principal{ID: root.ID, Role: models.RoleSuperuser}
}

func (suite *ProjectServiceTestSuite) TearDownTest() {
	closeTestDB(&suite.Suite, suite.db)
}

func (suite *ProjectServiceTestSuite) createTenant(name string) uint64 {
	tenant := &models.Tenant{Name: name, Status: models.TenantStatusActive}
	suite.Require().NoError(suite.db.Create(tenant).Error)
	return tenant.ID
}

func (suite *ProjectServiceTestSuite) createPrincipal(email string, tenantID uint64, role models.Role) authz.Principal {
	p := &models.Principal{Email: email, PasswordHash: "x", Role: role, TenantID: &tenantID}
	suite.Require().NoError(suite.db.Create(p).Error)
	return authz.Principal{ID: p.ID, TenantID: &tenantID, Role: role}
}

func (suite *ProjectServiceTestSuite) TestCreateScopesToCallerTenant() {
	project, err := suite.service.Create(suite.acmeMember, CreateProjectInput{Name: "Launch"})
	suite.Require().NoError(err)
	suite.Require().NotNil(project.TenantID)
	suite.Equal(suite.acmeID, *project.TenantID)
	suite.Equal(suite.acmeMember.ID, project.OwnerID)
}

func (suite *ProjectServiceTestSuite) TestForeignTenantCannotSeeProject() {
	project, err := suite.service.Create(suite.acmeMember, CreateProjectInput{Name: "Launch"})
	suite.Require().NoError(err)

	_, err = suite.service.Get(suite.globexAdmin, project.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindForbidden))

	// Writes are denied the same way.
	name := "Renamed"
	_, err = suite.service.Update(suite.globexAdmin, project.ID, UpdateProjectInput{Name: &name})
	suite.True(apperrors.IsKind(err, apperrors.KindForbidden))

	err = suite.service.Delete(suite.globexAdmin, project.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindForbidden))
}

func (suite *ProjectServiceTestSuite) TestListNeverIncludesForeignRows() {
	_, err := suite.service.Create(suite.acmeMember, CreateProjectInput{Name: "Acme project"})
	suite.Require().NoError(err)
	_, err = suite.service.Create(suite.globexAdmin, CreateProjectInput{Name: "Globex project"})
	suite.Require().NoError(err)

	projects, total, err := suite.service.List(suite.acmeAdmin, 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(projects, 1)
	suite.Equal("Acme project", projects[0].Name)
}

func (suite *ProjectServiceTestSuite) TestPersonalProjectHiddenFromTenantAdmin() {
	personal, err := suite.service.Create(suite.acmeMember, CreateProjectInput{Name: "Side notes", Personal: true})
	suite.Require().NoError(err)
	suite.Nil(personal.TenantID)

	// Even the member's own tenant admin cannot see it.
	_, err = suite.service.Get(suite.acmeAdmin, personal.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindForbidden))

	projects, _, err := suite.service.List(suite.acmeAdmin, 1, 20)
	suite.Require().NoError(err)
	suite.Empty(projects)

	// The owner sees it in their own list.
	projects, _, err = suite.service.List(suite.acmeMember, 1, 20)
	suite.Require().NoError(err)
	suite.Require().Len(projects, 1)
	suite.Equal(personal.ID, projects[0].ID)

	// Superusers see everything.
	got, err := suite.service.Get(suite.superuser, personal.ID)
	suite.Require().NoError(err)
	suite.Equal(personal.ID, got.ID)
}

func (suite *ProjectServiceTestSuite) TestDeleteCascadesWholeSubtree() {
	project, err := suite.service.Create(suite.acmeMember, CreateProjectInput{Name: "Launch"})
	suite.Require().NoError(err)

	t1 := &models.Task{Title: "a", ProjectID: project.ID, TenantID: project.TenantID, CreatorID: suite.acmeMember.ID, Position: 1}
	t2 := &models.Task{Title: "b", ProjectID: project.ID, TenantID: project.TenantID, CreatorID: suite.acmeMember.ID, Position: 2}
	suite.Require().NoError(suite.db.Create(t1).Error)
	suite.Require().NoError(suite.db.Create(t2).Error)
	suite.Require().NoError(suite.db.Create(&models.TaskDependency{
		FromTaskID: t1.ID, ToTaskID: t2.ID, Kind: models.DependencyFinishToStart, ProjectID: project.ID,
	}).Error)
	suite.Require().NoError(suite.db.Create(&models.Comment{Body: "hi", TaskID: t1.ID, TenantID: project.TenantID, OwnerID: suite.acmeMember.ID}).Error)
	suite.Require().NoError(suite.db.Create(&models.Attachment{FileName: "f", FilePath: "/f", TaskID: t1.ID, TenantID: project.TenantID, OwnerID: suite.acmeMember.ID}).Error)

	suite.Require().NoError(suite.service.Delete(suite.acmeMember, project.ID))

	for _, check := range []struct {
		model interface{}
	}{
		{&models.Task{}},
		{&models.TaskDependency{}},
		{&models.Comment{}},
		{&models.Attachment{}},
	} {
		var count int64
		suite.Require().NoError(suite.db.Model(check.model).Count(&count).Error)
		suite.Zero(count)
	}

	_, err = suite.service.Get(suite.acmeMember, project.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *ProjectServiceTestSuite) TestDeleteAbortLeavesSubtreeIntact() {
	project, err := suite.service.Create(suite.acmeMember, CreateProjectInput{Name: "Launch"})
	suite.Require().NoError(err)

	t1 := &models.Task{Title: "a", ProjectID: project.ID, TenantID: project.TenantID, CreatorID: suite.acmeMember.ID, Position: 1}
	t2 := &models.Task{Title: "b", ProjectID: project.ID, TenantID: project.TenantID, CreatorID: suite.acmeMember.ID, Position: 2}
	suite.Require().NoError(suite.db.Create(t1).Error)
	suite.Require().NoError(suite.db.Create(t2).Error)
	suite.Require().NoError(suite.db.Create(&models.TaskDependency{
		FromTaskID: t1.ID, ToTaskID: t2.ID, Kind: models.DependencyFinishToStart, ProjectID: project.ID,
	}).Error)
	suite.Require().NoError(suite.db.Create(&models.Comment{Body: "hi", TaskID: t1.ID, TenantID: project.TenantID, OwnerID: suite.acmeMember.ID}).Error)
	suite.Require().NoError(suite.db.Create(&models.Attachment{FileName: "f", FilePath: "/f", TaskID: t1.ID, TenantID: project.TenantID, OwnerID: suite.acmeMember.ID}).Error)

	// Abort the cascade once it reaches the task rows. The dependency,
	// comment and attachment deletes have already run by then.
	err = suite.db.Callback().Delete().Before("gorm:delete").Register("reject_task_rows", func(tx *gorm.DB) {
		if tx.Statement.Table == "tasks" {
			tx.AddError(errors.New("write rejected"))
		}
	})
	suite.Require().NoError(err)
	defer suite.db.Callback().Delete().Remove("reject_task_rows")

	suite.Error(suite.service.Delete(suite.acmeMember, project.ID))

	for _, check := range []struct {
		model interface{}
		want  int64
	}{
		{&models.Project{}, 1},
		{&models.Task{}, 2},
		{&models.TaskDependency{}, 1},
		{&models.Comment{}, 1},
		{&models.Attachment{}, 1},
	} {
		var count int64
		suite.Require().NoError(suite.db.Model(check.model).Count(&count).Error)
		suite.Equal(check.want, count, "aborted delete must leave %T untouched", check.model)
	}
}

func (suite *ProjectServiceTestSuite) TestUpdateValidation() {
	project, err := suite.service.Create(suite.acmeMember, CreateProjectInput{Name: "Launch"})
	suite.Require().NoError(err)

	empty := "   "
	_, err = suite.service.Update(suite.acmeMember, project.ID, UpdateProjectInput{Name: &empty})
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
