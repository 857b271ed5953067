package services

import (
	"time"

	"github.com/yukikurage/taskforge-api/internal/constants"
	"github.com/yukikurage/taskforge-api/internal/models"
)

func (suite *ServiceTestSuite) TestCreateProject_EnrollsOwner() {
	owner := suite.createUser("owner@example.com", models.RoleManager)

	project, err := suite.projects.Create(owner, CreateProjectInput{Name: " Apollo ", Tags: []string{"space"}})
	suite.Require().NoError(err)

	suite.Equal("Apollo", project.Name)
	suite.Equal(models.ProjectStatusActive, project.Status)
	suite.Equal(constants.DefaultProjectColor, project.Color)
	suite.Equal(0, project.Progress)
	suite.Equal(owner.ID, project.Owner.ID)
	suite.Require().Len(project.Members, 1)
	suite.Equal(owner.ID, project.Members[0].UserID)
	suite.Equal(models.RoleManager, project.Members[0].Role)
	suite.Equal(owner.Email, project.Members[0].User.Email)
}

func (suite *ServiceTestSuite) TestMembers() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	dev := suite.createUser("dev@example.com", models.RoleMember)
	project := suite.createProject(owner)

	manager := models.RoleManager
	project, err := suite.projects.AddMember(project.ID, AddMemberInput{Email: "DEV@example.com", Role: &manager})
	suite.Require().NoError(err)
	suite.Len(project.Members, 2)

	member, err := suite.store.Projects.FindMember(project.ID, dev.ID)
	suite.Require().NoError(err)
	suite.Equal(models.RoleManager, member.Role)

	_, err = suite.projects.AddMember(project.ID, AddMemberInput{Email: "dev@example.com"})
	suite.ErrorIs(err, ErrAlreadyMember)

	_, err = suite.projects.AddMember(project.ID, AddMemberInput{Email: "ghost@example.com"})
	suite.ErrorIs(err, ErrUserNotFound)

	_, err = suite.projects.RemoveMember(project.ID, owner.ID)
	suite.ErrorIs(err, ErrCannotRemoveOwner)

	project, err = suite.projects.RemoveMember(project.ID, dev.ID)
	suite.Require().NoError(err)
	suite.Len(project.Members, 1)

	_, err = suite.projects.RemoveMember(project.ID, dev.ID)
	suite.ErrorIs(err, ErrMemberNotFound)
}

func (suite *ServiceTestSuite) TestListProjects_Visibility() {
	alice := suite.createUser("alice@example.com", models.RoleMember)
	bob := suite.createUser("bob@example.com", models.RoleMember)
	admin := suite.createUser("admin@example.com", models.RoleAdmin)

	suite.createProject(alice, bob)
	suite.createProject(alice)

	projects, err := suite.projects.List(bob)
	suite.Require().NoError(err)
	suite.Len(projects, 1)

	projects, err = suite.projects.List(alice)
	suite.Require().NoError(err)
	suite.Len(projects, 2)

	projects, err = suite.projects.List(admin)
	suite.Require().NoError(err)
	suite.Len(projects, 2)
}

func (suite *ServiceTestSuite) TestUpdateAndDeleteProject() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	project := suite.createProject(owner)
	suite.createTask(owner, project, models.TaskStatusDone, nil)

	name := "Renamed"
	status := models.ProjectStatusOnHold
	updated, err := suite.projects.Update(project.ID, UpdateProjectInput{Name: &name, Status: &status})
	suite.Require().NoError(err)
	suite.Equal("Renamed", updated.Name)
	suite.Equal(models.ProjectStatusOnHold, updated.Status)
	suite.Equal(100, updated.Progress)
	suite.Len(updated.Members, 1)

	bad := models.ProjectStatus("paused")
	_, err = suite.projects.Update(project.ID, UpdateProjectInput{Status: &bad})
	suite.Error(err)

	suite.Require().NoError(suite.projects.Delete(project.ID))
	_, err = suite.projects.Get(project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
	suite.ErrorIs(suite.projects.Delete(project.ID), ErrProjectNotFound)
}

func (suite *ServiceTestSuite) TestMembershipResolve() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	dev := suite.createUser("dev@example.com", models.RoleMember)
	outsider := suite.createUser("outsider@example.com", models.RoleMember)
	admin := suite.createUser("admin@example.com", models.RoleAdmin)
	project := suite.createProject(owner, dev)

	_, rel, err := suite.membership.Resolve(owner, project.ID)
	suite.Require().NoError(err)
	suite.True(rel.IsOwner)

	_, rel, err = suite.membership.RequireAccess(dev, project.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(rel.ProjectRole)
	suite.Equal(models.RoleMember, *rel.ProjectRole)

	_, _, err = suite.membership.RequireAccess(outsider, project.ID)
	suite.ErrorIs(err, ErrNoProjectAccess)

	_, rel, err = suite.membership.RequireAccess(admin, project.ID)
	suite.Require().NoError(err)
	suite.False(rel.IsMember())

	_, _, err = suite.membership.Resolve(owner, 999)
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ServiceTestSuite) TestProjectDeadline_StoredInUTC() {
	owner := suite.createUser("owner@example.com", models.RoleManager)
	tokyo := time.FixedZone("JST", 9*60*60)
	cutoff := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	countBefore := func() int64 {
		var n int64
		suite.Require().NoError(suite.db.Model(&models.Project{}).Where("deadline < ?", cutoff).Count(&n).Error)
		return n
	}

	// 18:00 in Tokyo is 09:00 UTC, before the cutoff
	early := time.Date(2026, 10, 15, 18, 0, 0, 0, tokyo)
	project, err := suite.projects.Create(owner, CreateProjectInput{Name: "Apollo", Deadline: &early})
	suite.Require().NoError(err)
	suite.Equal(int64(1), countBefore())

	// 20:00 in Tokyo is 11:00 UTC, after the cutoff
	late := time.Date(2026, 10, 15, 20, 0, 0, 0, tokyo)
	_, err = suite.projects.Update(project.ID, UpdateProjectInput{Deadline: &late})
	suite.Require().NoError(err)
	suite.Equal(int64(0), countBefore())

	_, err = suite.projects.Update(project.ID, UpdateProjectInput{Deadline: &early})
	suite.Require().NoError(err)
	suite.Equal(int64(1), countBefore())
}
