package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService

	acmeID   uint64
	member   authz.Principal
	outsider authz.Principal
	project  *models.Project
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.db = openTestDB(&suite.Suite)
	suite.service = NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		repository.NewCommentRepository(suite.db),
		repository.NewAttachmentRepository(suite.db),
		authz.NewEngine(nil),
		nil,
		nil,
	)

	tenant := &models.Tenant{Name: "Acme", Status: models.TenantStatusActive}
	suite.Require().NoError(suite.db.Create(tenant).Error)
	suite.acmeID = tenant.ID

	member := &models.Principal{Email: "member@acme.test", PasswordHash: "x", Role: models.RoleMember, TenantID: &tenant.ID}
	suite.Require().NoError(suite.db.Create(member).Error)
	suite.member = authz.Principal{ID: member.ID, TenantID: &tenant.ID, Role: models.RoleMember}

	foreign := &models.Tenant{Name: "Globex", Status: models.TenantStatusActive}
	suite.Require().NoError(suite.db.Create(foreign).Error)
	out := &models.Principal{Email: "x@globex.test", PasswordHash: "x", Role: models.RoleAdmin, TenantID: &foreign.ID}
	suite.Require().NoError(suite.db.Create(out).Error)
	suite.outsider = authz.Principal{ID: out.ID, TenantID: &foreign.ID, Role: models.RoleAdmin}

	suite.project = &models.Project{Name: "Launch", TenantID: &tenant.ID, OwnerID: member.ID}
	suite.Require().NoError(suite.db.Create(suite.project).Error)
}

func (suite *TaskServiceTestSuite) TearDownTest() {
	closeTestDB(&suite.Suite, suite.db)
}

func (suite *TaskServiceTestSuite) TestCreateInheritsTenantAndAppends() {
	first, err := suite.service.Create(suite.member, CreateTaskInput{ProjectID: suite.project.ID, Title: "first"})
	suite.Require().NoError(err)
	second, err := suite.service.Create(suite.member, CreateTaskInput{ProjectID: suite.project.ID, Title: "second"})
	suite.Require().NoError(err)

	suite.Require().NotNil(first.TenantID)
	suite.Equal(suite.acmeID, *first.TenantID)
	suite.Equal(models.TaskStatusTodo, first.Status)
	suite.Greater(second.Position, first.Position)
}

func (suite *TaskServiceTestSuite) TestCreateInForeignProjectReadsAsMissing() {
	_, err := suite.service.Create(suite.outsider, CreateTaskInput{ProjectID: suite.project.ID, Title: "sneaky"})
	suite.True(apperrors.IsKind(err, apperrors.KindForbidden))
}

func (suite *TaskServiceTestSuite) TestDateValidation() {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	due := start.AddDate(0, 0, -1)
	_, err := suite.service.Create(suite.member, CreateTaskInput{
		ProjectID: suite.project.ID, Title: "bad dates", StartDate: &start, DueDate: &due,
	})
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *TaskServiceTestSuite) TestUpdateAndClearDates() {
	task, err := suite.service.Create(suite.member, CreateTaskInput{ProjectID: suite.project.ID, Title: "t"})
	suite.Require().NoError(err)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	due := start.AddDate(0, 0, 3)
	updated, err := suite.service.Update(suite.member, task.ID, UpdateTaskInput{StartDate: &start, DueDate: &due})
	suite.Require().NoError(err)
	suite.True(updated.Dated())

	done := models.TaskStatusDone
	updated, err = suite.service.Update(suite.member, task.ID, UpdateTaskInput{Status: &done, ClearDates: true})
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusDone, updated.Status)
	suite.Nil(updated.StartDate)
	suite.Nil(updated.DueDate)
}

func (suite *TaskServiceTestSuite) TestListByProjectOrdersByPosition() {
	for _, title := range []string{"a", "b", "c"} {
		_, err := suite.service.Create(suite.member, CreateTaskInput{ProjectID: suite.project.ID, Title: title})
		suite.Require().NoError(err)
	}

	tasks, err := suite.service.ListByProject(suite.member, suite.project.ID, nil)
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 3)
	suite.Equal("a", tasks[0].Title)
	suite.Equal("c", tasks[2].Title)

	// Status narrowing.
	done := models.TaskStatusDone
	_, err = suite.service.Update(suite.member, tasks[1].ID, UpdateTaskInput{Status: &done})
	suite.Require().NoError(err)
	filtered, err := suite.service.ListByProject(suite.member, suite.project.ID, &done)
	suite.Require().NoError(err)
	suite.Require().Len(filtered, 1)
	suite.Equal("b", filtered[0].Title)

	_, err = suite.service.ListByProject(suite.outsider, suite.project.ID, nil)
	suite.True(apperrors.IsKind(err, apperrors.KindForbidden))
}

func (suite *TaskServiceTestSuite) TestComments() {
	task, err := suite.service.Create(suite.member, CreateTaskInput{ProjectID: suite.project.ID, Title: "t"})
	suite.Require().NoError(err)

	comment, err := suite.service.AddComment(suite.member, task.ID, "looks good")
	suite.Require().NoError(err)
	suite.Equal(suite.member.ID, comment.OwnerID)

	comments, err := suite.service.ListComments(suite.member, task.ID)
	suite.Require().NoError(err)
	suite.Len(comments, 1)

	err = suite.service.DeleteComment(suite.outsider, comment.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindForbidden))

	suite.Require().NoError(suite.service.DeleteComment(suite.member, comment.ID))
	comments, err = suite.service.ListComments(suite.member, task.ID)
	suite.Require().NoError(err)
	suite.Empty(comments)
}

func (suite *TaskServiceTestSuite) TestAttachments() {
	task, err := suite.service.Create(suite.member, CreateTaskInput{ProjectID: suite.project.ID, Title: "t"})
	suite.Require().NoError(err)

	att, err := suite.service.AddAttachment(suite.member, task.ID, AddAttachmentInput{
		FileName: "deck.pdf", FilePath: "tenants/1/deck.pdf", SizeBytes: 1024,
	})
	suite.Require().NoError(err)

	list, err := suite.service.ListAttachments(suite.member, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(list, 1)
	suite.Equal(att.ID, list[0].ID)

	suite.Require().NoError(suite.service.DeleteAttachment(suite.member, att.ID))
}

func (suite *TaskServiceTestSuite) TestDeleteCascadesTaskSubtree() {
	task, err := suite.service.Create(suite.member, CreateTaskInput{ProjectID: suite.project.ID, Title: "t"})
	suite.Require().NoError(err)
	_, err = suite.service.AddComment(suite.member, task.ID, "bye")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Delete(suite.member, task.ID))

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&count).Error)
	suite.Zero(count)
	_, err = suite.service.Get(suite.member, task.ID)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
