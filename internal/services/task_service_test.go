package services

import (
	"testing"
	"time"

	"github.com/ksuzuki/task-tracker-api/internal/models"
	"github.com/ksuzuki/task-tracker-api/internal/policy"
	"github.com/ksuzuki/task-tracker-api/internal/repository"
	"github.com/ksuzuki/task-tracker-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskComment{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	suite.service = NewTaskService(taskRepo, userRepo)
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createUser(name, email string, role models.UserRole) *models.User {
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) createTask(title string, createdBy uint64, assignedTo *uint64) *models.Task {
	task := &models.Task{
		Title:        title,
		Status:       models.TaskStatusPending,
		Priority:     models.TaskPriorityMedium,
		CreatedByID:  createdBy,
		AssignedToID: assignedTo,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func identity(user *models.User) policy.Identity {
	return policy.Identity{UserID: user.ID, Role: user.Role}
}

func (suite *TaskServiceTestSuite) TestListTasks_ManagerSeesOnlyOwnTasks() {
	managerA := suite.createUser("Manager A", "a@example.com", models.RoleManager)
	managerB := suite.createUser("Manager B", "b@example.com", models.RoleManager)
	suite.createTask("A's task", managerA.ID, nil)
	suite.createTask("B's task", managerB.ID, nil)

	tasks, total, err := suite.service.ListTasks(identity(managerA), utils.PaginationParams{})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "A's task", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_WorkerSeesOnlyAssignedTasks() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	other := suite.createUser("Other", "o@example.com", models.RoleWorker)
	suite.createTask("Assigned", manager.ID, &worker.ID)
	suite.createTask("Someone else's", manager.ID, &other.ID)
	suite.createTask("Unassigned", manager.ID, nil)

	tasks, total, err := suite.service.ListTasks(identity(worker), utils.PaginationParams{})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Assigned", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestCreateTask_WorkerForbidden() {
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)

	_, err := suite.service.CreateTask(identity(worker), CreateTaskInput{Title: "Nope"})

	assert.ErrorIs(suite.T(), err, ErrTaskAccessDenied)
}

func (suite *TaskServiceTestSuite) TestCreateTask_CreatorForcedToActor() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)

	task, err := suite.service.CreateTask(identity(manager), CreateTaskInput{
		Title:        "New task",
		AssignedToID: &worker.ID,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), manager.ID, task.CreatedByID)
	assert.Equal(suite.T(), models.TaskStatusPending, task.Status)
	assert.Equal(suite.T(), models.TaskPriorityMedium, task.Priority)
	assert.Nil(suite.T(), task.StartDate)
	assert.Nil(suite.T(), task.CompletedDate)
}

func (suite *TaskServiceTestSuite) TestCreateTask_Validation() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	otherManager := suite.createUser("Other", "o@example.com", models.RoleManager)
	actor := identity(manager)

	_, err := suite.service.CreateTask(actor, CreateTaskInput{Title: "   "})
	assert.ErrorIs(suite.T(), err, ErrTitleRequired)

	_, err = suite.service.CreateTask(actor, CreateTaskInput{Title: "T", Priority: "critical"})
	assert.ErrorIs(suite.T(), err, ErrInvalidPriority)

	_, err = suite.service.CreateTask(actor, CreateTaskInput{Title: "T", EstimatedHours: -1})
	assert.ErrorIs(suite.T(), err, ErrNegativeHours)

	missing := uint64(999)
	_, err = suite.service.CreateTask(actor, CreateTaskInput{Title: "T", AssignedToID: &missing})
	assert.ErrorIs(suite.T(), err, ErrAssigneeNotFound)

	_, err = suite.service.CreateTask(actor, CreateTaskInput{Title: "T", AssignedToID: &otherManager.ID})
	assert.ErrorIs(suite.T(), err, ErrAssigneeNotWorker)
}

func (suite *TaskServiceTestSuite) TestGetTask_WorkerAccess() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	stranger := suite.createUser("Stranger", "s@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)

	got, err := suite.service.GetTask(identity(worker), task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), task.ID, got.ID)

	_, err = suite.service.GetTask(identity(stranger), task.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskAccessDenied)

	// Any manager may read any task.
	otherManager := suite.createUser("Other", "o@example.com", models.RoleManager)
	_, err = suite.service.GetTask(identity(otherManager), task.ID)
	assert.NoError(suite.T(), err)
}

func (suite *TaskServiceTestSuite) TestReplaceTask_OmittedAssigneeClearsAssignment() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)

	updated, err := suite.service.ReplaceTask(identity(manager), task.ID, ReplaceTaskInput{
		Title: "Task",
	})
	suite.Require().NoError(err)

	assert.Nil(suite.T(), updated.AssignedToID)
	assert.Equal(suite.T(), models.TaskPriorityMedium, updated.Priority)
	assert.Nil(suite.T(), updated.DueDate)
	assert.Zero(suite.T(), updated.EstimatedHours)
}

func (suite *TaskServiceTestSuite) TestReplaceTask_PreservesLifecycleFields() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)

	// Worker moves the task into progress first.
	_, err := suite.service.UpdateStatus(identity(worker), task.ID, StatusChangeInput{
		Status:      models.TaskStatusInProgress,
		ActualHours: floatPtr(3),
	})
	suite.Require().NoError(err)

	updated, err := suite.service.ReplaceTask(identity(manager), task.ID, ReplaceTaskInput{
		Title:        "Renamed",
		Priority:     models.TaskPriorityHigh,
		AssignedToID: &worker.ID,
	})
	suite.Require().NoError(err)

	// An omitted status keeps the stored value; dates and actual hours are
	// outside the replace set entirely.
	assert.Equal(suite.T(), models.TaskStatusInProgress, updated.Status)
	assert.NotNil(suite.T(), updated.StartDate)
	assert.Equal(suite.T(), float64(3), updated.ActualHours)
	assert.Equal(suite.T(), "Renamed", updated.Title)
}

func (suite *TaskServiceTestSuite) TestReplaceTask_StatusOverwrittenWithoutDateEffects() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)

	updated, err := suite.service.ReplaceTask(identity(manager), task.ID, ReplaceTaskInput{
		Title:        "Task",
		Status:       models.TaskStatusCompleted,
		AssignedToID: &worker.ID,
	})
	suite.Require().NoError(err)

	// The manager's path changes status verbatim but never writes the dates.
	assert.Equal(suite.T(), models.TaskStatusCompleted, updated.Status)
	assert.Nil(suite.T(), updated.StartDate)
	assert.Nil(suite.T(), updated.CompletedDate)

	_, err = suite.service.ReplaceTask(identity(manager), task.ID, ReplaceTaskInput{
		Title:  "Task",
		Status: "archived",
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidStatus)
}

func (suite *TaskServiceTestSuite) TestReplaceTask_OnlyCreatorAllowed() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	otherManager := suite.createUser("Other", "o@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)

	_, err := suite.service.ReplaceTask(identity(otherManager), task.ID, ReplaceTaskInput{Title: "X"})
	assert.ErrorIs(suite.T(), err, ErrTaskAccessDenied)

	_, err = suite.service.ReplaceTask(identity(worker), task.ID, ReplaceTaskInput{Title: "X"})
	assert.ErrorIs(suite.T(), err, ErrTaskAccessDenied)
}

func (suite *TaskServiceTestSuite) TestUpdateStatus_LifecycleScenario() {
	manager := suite.createUser("Manager A", "a@example.com", models.RoleManager)
	worker := suite.createUser("Worker B", "b@example.com", models.RoleWorker)
	task := suite.createTask("Task X", manager.ID, &worker.ID)
	actor := identity(worker)

	// pending -> in-progress sets the start date.
	updated, err := suite.service.UpdateStatus(actor, task.ID, StatusChangeInput{
		Status: models.TaskStatusInProgress,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusInProgress, updated.Status)
	suite.Require().NotNil(updated.StartDate)
	assert.WithinDuration(suite.T(), time.Now(), *updated.StartDate, 5*time.Second)
	assert.Nil(suite.T(), updated.CompletedDate)
	startDate := *updated.StartDate

	// in-progress -> completed sets the completed date, start date unchanged.
	updated, err = suite.service.UpdateStatus(actor, task.ID, StatusChangeInput{
		Status: models.TaskStatusCompleted,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusCompleted, updated.Status)
	suite.Require().NotNil(updated.CompletedDate)
	suite.Require().NotNil(updated.StartDate)
	assert.Equal(suite.T(), startDate.Unix(), updated.StartDate.Unix())
	completedDate := *updated.CompletedDate

	// Moving back and re-completing does not reset either date.
	_, err = suite.service.UpdateStatus(actor, task.ID, StatusChangeInput{
		Status: models.TaskStatusInProgress,
	})
	suite.Require().NoError(err)

	updated, err = suite.service.UpdateStatus(actor, task.ID, StatusChangeInput{
		Status: models.TaskStatusCompleted,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), startDate.Unix(), updated.StartDate.Unix())
	assert.Equal(suite.T(), completedDate.Unix(), updated.CompletedDate.Unix())

	// Manager A deletes task X, a later read reports not found.
	err = suite.service.DeleteTask(identity(manager), task.ID)
	suite.Require().NoError(err)

	_, err = suite.service.GetTask(identity(manager), task.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateStatus_UnassignedWorkerForbidden() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	stranger := suite.createUser("Worker C", "c@example.com", models.RoleWorker)
	task := suite.createTask("Task Y", manager.ID, &worker.ID)

	_, err := suite.service.UpdateStatus(identity(stranger), task.ID, StatusChangeInput{
		Status: models.TaskStatusInProgress,
	})

	assert.ErrorIs(suite.T(), err, ErrTaskAccessDenied)
}

func (suite *TaskServiceTestSuite) TestUpdateStatus_CreatingManagerNotGranted() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)

	// Status transitions belong to the assignee, not the creator.
	_, err := suite.service.UpdateStatus(identity(manager), task.ID, StatusChangeInput{
		Status: models.TaskStatusCompleted,
	})

	assert.ErrorIs(suite.T(), err, ErrTaskAccessDenied)
}

func (suite *TaskServiceTestSuite) TestUpdateStatus_Validation() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)
	actor := identity(worker)

	_, err := suite.service.UpdateStatus(actor, task.ID, StatusChangeInput{Status: "archived"})
	assert.ErrorIs(suite.T(), err, ErrInvalidStatus)

	_, err = suite.service.UpdateStatus(actor, task.ID, StatusChangeInput{
		Status:      models.TaskStatusInProgress,
		ActualHours: floatPtr(-2),
	})
	assert.ErrorIs(suite.T(), err, ErrNegativeHours)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_OnlyCreatorAllowed() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	otherManager := suite.createUser("Other", "o@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)

	err := suite.service.DeleteTask(identity(otherManager), task.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskAccessDenied)

	err = suite.service.DeleteTask(identity(worker), task.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskAccessDenied)

	err = suite.service.DeleteTask(identity(manager), task.ID)
	assert.NoError(suite.T(), err)
}

func (suite *TaskServiceTestSuite) TestAddComment_RejectsWhitespaceOnlyText() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	task := suite.createTask("Task", manager.ID, nil)

	_, err := suite.service.AddComment(identity(manager), task.ID, "   \t  ")

	assert.ErrorIs(suite.T(), err, ErrCommentTextRequired)
}

func (suite *TaskServiceTestSuite) TestAddComment_AppendsPreservingOrder() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, &worker.ID)

	updated, err := suite.service.AddComment(identity(manager), task.ID, "  first  ")
	suite.Require().NoError(err)
	suite.Require().Len(updated.Comments, 1)
	assert.Equal(suite.T(), "first", updated.Comments[0].Text)

	updated, err = suite.service.AddComment(identity(worker), task.ID, "second")
	suite.Require().NoError(err)
	suite.Require().Len(updated.Comments, 2)
	assert.Equal(suite.T(), "first", updated.Comments[0].Text)
	assert.Equal(suite.T(), "second", updated.Comments[1].Text)
}

func (suite *TaskServiceTestSuite) TestAddComment_UnassignedWorkerMayComment() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	stranger := suite.createUser("Stranger", "s@example.com", models.RoleWorker)
	task := suite.createTask("Task", manager.ID, nil)

	updated, err := suite.service.AddComment(identity(stranger), task.ID, "drive-by comment")

	suite.Require().NoError(err)
	suite.Require().Len(updated.Comments, 1)
	assert.Equal(suite.T(), stranger.ID, updated.Comments[0].UserID)
}

func (suite *TaskServiceTestSuite) TestAddComment_NameIsSnapshot() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	task := suite.createTask("Task", manager.ID, nil)

	updated, err := suite.service.AddComment(identity(manager), task.ID, "hello")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Manager", updated.Comments[0].UserName)

	// Renaming the author afterwards does not rewrite the snapshot.
	suite.Require().NoError(suite.db.Model(&models.User{}).
		Where("id = ?", manager.ID).
		Update("name", "Renamed Manager").Error)

	got, err := suite.service.GetTask(identity(manager), task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Manager", got.Comments[0].UserName)
}

func (suite *TaskServiceTestSuite) TestStats_CountsAndOverdue() {
	manager := suite.createUser("Manager", "m@example.com", models.RoleManager)
	worker := suite.createUser("Worker", "w@example.com", models.RoleWorker)

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	mkTask := func(status models.TaskStatus, due *time.Time) {
		task := &models.Task{
			Title:        "t",
			Status:       status,
			Priority:     models.TaskPriorityMedium,
			CreatedByID:  manager.ID,
			AssignedToID: &worker.ID,
			DueDate:      due,
		}
		suite.Require().NoError(suite.db.Create(task).Error)
	}

	mkTask(models.TaskStatusPending, nil)       // no due date, never overdue
	mkTask(models.TaskStatusPending, &past)     // overdue
	mkTask(models.TaskStatusCompleted, &past)   // completed, not overdue
	mkTask(models.TaskStatusBlocked, &past)     // blocked still counts as overdue
	mkTask(models.TaskStatusInProgress, &future)

	stats, err := suite.service.Stats(identity(manager))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(5), stats.Total)
	assert.Equal(suite.T(), int64(2), stats.Pending)
	assert.Equal(suite.T(), int64(1), stats.InProgress)
	assert.Equal(suite.T(), int64(1), stats.Completed)
	assert.Equal(suite.T(), int64(1), stats.Blocked)
	assert.Equal(suite.T(), int64(2), stats.Overdue)

	// The worker's scope is the same task set here, assigned to them.
	stats, err = suite.service.Stats(identity(worker))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(5), stats.Total)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
