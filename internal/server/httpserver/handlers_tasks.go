package httpserver

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

type taskForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	DueDate     string `form:"due_date"`
}

func (f taskForm) input() services.TaskInput {
	return services.TaskInput{Title: f.Title, Description: f.Description, DueDate: f.DueDate}
}

// taskID parses the :id path segment. Anything that is not a positive
// integer cannot name a task and is answered as not found.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) listTasks(c *gin.Context) {
	filter := models.ParseFilter(c.Query("filter"))
	order := models.ParseSort(c.Query("sort"))

	ov, err := s.tasks.Overview(c.Request.Context(), identityFrom(c), filter, order)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":  ov.Tasks,
		"filter": ov.Filter,
		"sort":   ov.Sort,
		"counts": ov.Counts,
	})
}

func (s *Server) apiTasks(c *gin.Context) {
	list, err := s.tasks.List(c.Request.Context(), identityFrom(c),
		models.ParseFilter(c.Query("filter")), models.ParseSort(c.Query("sort")))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

func (s *Server) newTaskForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form":            "task",
		"action":          "/tasks/new",
		"fields":          []string{"title", "description", "due_date"},
		"due_date_format": common.DueDateLayout,
	})
}

func (s *Server) createTask(c *gin.Context) {
	var f taskForm
	if err := c.ShouldBind(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form"})
		return
	}

	if _, err := s.tasks.Create(c.Request.Context(), identityFrom(c), f.input()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/tasks")
}

func (s *Server) getTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	task, err := s.tasks.Get(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) editTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	var f taskForm
	if err := c.ShouldBind(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form"})
		return
	}
	_, completed := c.GetPostForm("completed")

	if _, err := s.tasks.Edit(c.Request.Context(), identityFrom(c), id, f.input(), completed); err != nil {
		s.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/tasks")
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	if err := s.tasks.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/tasks")
}

func (s *Server) toggleTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	if _, err := s.tasks.Toggle(c.Request.Context(), identityFrom(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/tasks")
}

func (s *Server) exportTasks(c *gin.Context) {
	if s.exporter == nil {
		s.writeError(c, services.ErrExportDisabled)
		return
	}

	url, err := s.exporter.Export(c.Request.Context(), identityFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}
